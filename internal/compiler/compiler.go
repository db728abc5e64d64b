// Package compiler folds the dependency expressions of one arrangement
// stage into a dag.Graph, resolving or reusing a task handle for every id
// it meets.
//
// An expression has the form "A,B:C,D": every task of the right group
// depends on every task of the left group. Without a colon the listed
// tasks are independent.
package compiler

import (
	"context"
	"strings"

	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/dag"
	"github.com/specialistvlad/stagegrid/internal/resultcheck"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// Resolver instantiates a task from an implementation reference.
type Resolver interface {
	Resolve(ref string) (task.Task, error)
}

// Cache holds the handles instantiated during one run.
type Cache interface {
	Lookup(id string) (*task.Handle, bool)
	Store(id string, h *task.Handle)
}

// Expression is one parsed dependency expression.
type Expression struct {
	Left  []string
	Right []string
}

// Parse splits a raw expression into its left and optional right group.
// Ids are trimmed; empty ids and more than one colon are configuration errors.
func Parse(raw string) (Expression, error) {
	parts := strings.Split(raw, ":")
	if len(parts) > 2 {
		return Expression{}, config.Invalidf("expression %q has more than one ':'", raw)
	}

	left, err := splitIDs(raw, parts[0])
	if err != nil {
		return Expression{}, err
	}
	expr := Expression{Left: left}
	if len(parts) == 2 {
		if expr.Right, err = splitIDs(raw, parts[1]); err != nil {
			return Expression{}, err
		}
	}
	return expr, nil
}

func splitIDs(raw, group string) ([]string, error) {
	fields := strings.Split(group, ",")
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		id := strings.TrimSpace(f)
		if id == "" {
			return nil, config.Invalidf("expression %q contains an empty task id", raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Compile builds the graph of one stage and checks it for cycles. No task
// runs during compilation; every failure is a configuration error.
func Compile(ctx context.Context, stage []string, tasks map[string]*config.TaskDescriptor, cache Cache, resolver Resolver) (*dag.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compile: Starting stage graph construction.", "expressions", len(stage))

	g := dag.New()
	for _, raw := range stage {
		expr, err := Parse(raw)
		if err != nil {
			return nil, err
		}

		for _, id := range expr.Left {
			h, err := ResolveHandle(id, tasks, cache, resolver)
			if err != nil {
				return nil, err
			}
			g.AddNode(id, h)
		}

		for _, id := range expr.Right {
			h, err := ResolveHandle(id, tasks, cache, resolver)
			if err != nil {
				return nil, err
			}
			g.AddNode(id, h)
			for _, dep := range expr.Left {
				if err := g.AddEdge(id, dep); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := g.DetectCycles(); err != nil {
		return nil, err
	}
	logger.Debug("Compile: Stage graph built.", "nodes", g.Len())
	return g, nil
}

// ResolveHandle returns the cached handle of id when its implementation
// reference still matches the descriptor, and otherwise instantiates,
// configures and caches a new one.
func ResolveHandle(id string, tasks map[string]*config.TaskDescriptor, cache Cache, resolver Resolver) (*task.Handle, error) {
	d, ok := tasks[id]
	if !ok || d == nil {
		return nil, config.Invalidf("task %q is referenced but not described", id)
	}
	impl := strings.TrimSpace(d.Impl)

	if h, ok := cache.Lookup(id); ok && h.Impl() == impl {
		return h, nil
	}

	if impl == "" {
		return nil, config.Invalidf("task %q has no implementation reference", id)
	}
	t, err := resolver.Resolve(impl)
	if err != nil {
		return nil, err
	}

	opts := task.Options{
		Retries: d.Retries,
		Timeout: d.Timeout,
		Params:  d.Resolved,
	}
	if d.Validate != "" {
		v, err := resultcheck.Compile(d.Validate)
		if err != nil {
			return nil, err
		}
		opts.Validator = v
	}

	h := task.NewHandle(id, impl, t, opts)
	cache.Store(id, h)
	return h, nil
}
