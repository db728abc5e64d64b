package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// Ref is the implementation reference of the env_vars task.
const Ref = "env_vars"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Task returns a snapshot of the process environment. The optional "prefix"
// parameter keeps only variables starting with it.
type Task struct {
	task.Base
}

// Invoke collects the environment into a map.
func (t *Task) Invoke(_ context.Context, call *task.Call) (*task.Result, error) {
	prefix := call.StringParam("prefix")
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			envMap[pair[0]] = pair[1]
		}
	}
	return task.NewSuccess(envMap), nil
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Ref, func() task.Task { return &Task{} })
}
