package testutil

import (
	"sync"

	"github.com/specialistvlad/stagegrid/internal/task"
)

// Env is an in-memory task.Env for calling tasks directly.
type Env struct {
	mu      sync.Mutex
	Inputs  map[string]any
	Results map[string]*task.Result
}

// NewEnv creates an Env holding results.
func NewEnv(results map[string]*task.Result) *Env {
	if results == nil {
		results = map[string]*task.Result{}
	}
	return &Env{Inputs: map[string]any{}, Results: results}
}

func (e *Env) Input(key string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.Inputs[key]
	return v, ok
}

func (e *Env) Result(id string) (*task.Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.Results[id]
	return r, ok
}

func (e *Env) StoreResult(id string, r *task.Result) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.Results[id]; ok {
		return false
	}
	e.Results[id] = r
	return true
}

// Call returns a first-attempt call of id with params on e.
func (e *Env) Call(id string, params map[string]any) *task.Call {
	if params == nil {
		params = map[string]any{}
	}
	return &task.Call{TaskID: id, Params: params, Env: e}
}

var _ task.Env = (*Env)(nil)
