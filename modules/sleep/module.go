// Package sleep provides a task that waits for a while before succeeding.
package sleep

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// Ref is the implementation reference of the sleep task.
const Ref = "sleep"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Task sleeps for the "duration" parameter, a Go duration string such as
// "250ms". Cancelling the context ends the sleep with an error.
type Task struct {
	task.Base
}

// Invoke sleeps and reports how long it slept.
func (t *Task) Invoke(ctx context.Context, call *task.Call) (*task.Result, error) {
	d, err := time.ParseDuration(call.StringParam("duration"))
	if err != nil {
		return nil, fmt.Errorf("sleep %s: invalid duration: %w", call.TaskID, err)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return task.NewSuccess(d.String()), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Ref, func() task.Task { return &Task{} })
}
