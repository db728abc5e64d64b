package print

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"sort"

	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// Ref is the implementation reference of the print task.
const Ref = "print"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed parameters. Nil means os.Stdout.
	Out io.Writer
}

// Task prints every parameter of its invocation and returns them as its payload.
type Task struct {
	task.Base
	out io.Writer
}

// Invoke prints the parameters sorted by name.
func (t *Task) Invoke(ctx context.Context, call *task.Call) (*task.Result, error) {
	ctxlog.FromContext(ctx).Info("Printing parameters.", "taskID", call.TaskID)

	if len(call.Params) == 0 {
		fmt.Fprintln(t.out, "      (null)")
		return task.NewSuccess(map[string]any{}), nil
	}

	keys := make([]string, 0, len(call.Params))
	for k := range call.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(t.out, "      %s = %q\n", k, call.StringParam(k))
	}
	return task.NewSuccess(maps.Clone(call.Params)), nil
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.Register(Ref, func() task.Task { return &Task{out: out} })
}
