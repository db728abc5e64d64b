package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// RecorderRef is the implementation reference registered by Recorder.
const RecorderRef = "test.recorder"

// Behavior scripts what the recording task does for one task id.
type Behavior struct {
	// Sleep is slept on every attempt before returning.
	Sleep time.Duration
	// FailFirst makes the first FailFirst attempts return an error.
	FailFirst int
	// AlwaysFail makes every attempt return an error.
	AlwaysFail bool
	// Reads lists task ids whose stored results are captured at invoke time.
	Reads []string
	// Data computes the payload. It defaults to "DATA:<id>".
	Data func(call *task.Call) any
}

// Recorder is a registry module whose task records every invocation.
type Recorder struct {
	mu        sync.Mutex
	behaviors map[string]Behavior
	calls     map[string]int
	records   map[string]*ExecutionRecord
	seen      map[string]map[string]*task.Result
	order     []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		behaviors: make(map[string]Behavior),
		calls:     make(map[string]int),
		records:   make(map[string]*ExecutionRecord),
		seen:      make(map[string]map[string]*task.Result),
	}
}

// On scripts the behavior of task id.
func (r *Recorder) On(id string, b Behavior) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.behaviors[id] = b
	return r
}

// Register implements registry.Module.
func (r *Recorder) Register(reg *registry.Registry) {
	reg.Register(RecorderRef, func() task.Task { return &recordingTask{r: r} })
}

// Calls returns how many times task id was invoked.
func (r *Recorder) Calls(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[id]
}

// Record returns the execution window of task id.
func (r *Recorder) Record(id string) (ExecutionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return ExecutionRecord{}, false
	}
	return *rec, true
}

// Seen returns the results of Behavior.Reads captured by the last invocation of id.
func (r *Recorder) Seen(id string) map[string]*task.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[id]
}

// Order returns the task ids in the order of their first invocation.
func (r *Recorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *Recorder) begin(id string) (Behavior, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.calls[id]
	r.calls[id] = n + 1
	if n == 0 {
		r.order = append(r.order, id)
		r.records[id] = &ExecutionRecord{Start: time.Now()}
	}
	return r.behaviors[id], n
}

func (r *Recorder) end(id string, seen map[string]*task.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[id].End = time.Now()
	if seen != nil {
		r.seen[id] = seen
	}
}

type recordingTask struct {
	task.Base
	r *Recorder
}

func (t *recordingTask) Invoke(_ context.Context, call *task.Call) (*task.Result, error) {
	b, n := t.r.begin(call.TaskID)

	var seen map[string]*task.Result
	if len(b.Reads) > 0 {
		seen = make(map[string]*task.Result, len(b.Reads))
		for _, id := range b.Reads {
			if res, ok := call.DependencyResult(id); ok {
				seen[id] = res
			}
		}
	}
	if b.Sleep > 0 {
		time.Sleep(b.Sleep)
	}
	defer t.r.end(call.TaskID, seen)

	if b.AlwaysFail || n < b.FailFirst {
		return nil, fmt.Errorf("scripted failure of %s on attempt %d", call.TaskID, call.Attempt)
	}
	if b.Data != nil {
		return task.NewSuccess(b.Data(call)), nil
	}
	return task.NewSuccess("DATA:" + call.TaskID), nil
}
