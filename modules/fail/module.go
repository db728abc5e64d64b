// Package fail provides a task that fails on purpose, for exercising retry
// budgets and failure propagation.
package fail

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// Ref is the implementation reference of the fail task.
const Ref = "fail"

// Module implements the registry.Module interface for this package.
type Module struct{}

// ErrScripted is the error returned by failing attempts.
var ErrScripted = errors.New("scripted failure")

// Task fails the first "failures" attempts of every execution (an INT
// parameter; a missing or negative value fails every attempt) and then
// succeeds.
type Task struct {
	task.Base
}

// Invoke fails or succeeds according to the attempt number.
func (t *Task) Invoke(_ context.Context, call *task.Call) (*task.Result, error) {
	failures := -1
	if n, ok := call.Param("failures").(int); ok {
		failures = n
	}

	if failures < 0 || call.Attempt < failures {
		msg := call.StringParam("message")
		if msg == "" {
			msg = "attempt failed"
		}
		return nil, fmt.Errorf("%w: %s (attempt %d)", ErrScripted, msg, call.Attempt)
	}
	return task.NewSuccess(fmt.Sprintf("succeeded on attempt %d", call.Attempt)), nil
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Ref, func() task.Task { return &Task{} })
}
