// Package concat joins the payloads of other tasks of the same run.
package concat

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// Ref is the implementation reference of the concat task.
const Ref = "concat"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Task reads the results of the tasks named by its "from" parameter and
// produces "[<payload>,<payload>] -> DATA:<id>". A missing result fails
// the attempt.
type Task struct {
	task.Base
}

// Invoke builds the joined payload.
func (t *Task) Invoke(_ context.Context, call *task.Call) (*task.Result, error) {
	from := sources(call.Param("from"))

	parts := make([]string, 0, len(from))
	for _, id := range from {
		res, ok := call.DependencyResult(id)
		if !ok {
			return nil, fmt.Errorf("concat %s: no result for %q", call.TaskID, id)
		}
		parts = append(parts, fmt.Sprint(res.Data))
	}
	return task.NewSuccess(fmt.Sprintf("[%s] -> DATA:%s", strings.Join(parts, ","), call.TaskID)), nil
}

// sources accepts a LIST parameter or a comma-separated string.
func sources(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case string:
		if x == "" {
			return nil
		}
		ids := strings.Split(x, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		return ids
	default:
		return nil
	}
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Ref, func() task.Task { return &Task{} })
}
