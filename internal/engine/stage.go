package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/dag"
	"github.com/specialistvlad/stagegrid/internal/session"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// DependencyError is the failure of a task that was not executed because
// one of its dependencies failed.
type DependencyError struct {
	TaskID     string
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("task %q not executed: dependency %q failed: %v", e.TaskID, e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// unit is the execution unit of one node. done is closed once err is final.
type unit struct {
	node *dag.Node
	done chan struct{}
	err  error
	// poisoned marks a unit failed by a dependency rather than by its own task.
	poisoned bool
}

// runStage executes every node of g and blocks until all of them completed.
// The returned error joins the failures of the tasks that actually ran.
func (e *Engine) runStage(ctx context.Context, g *dag.Graph, sess *session.Session) error {
	units := make(map[string]*unit, g.Len())
	nodes := g.Nodes()
	for _, n := range nodes {
		units[n.ID()] = &unit{node: n, done: make(chan struct{})}
	}

	var wg conc.WaitGroup
	for _, n := range nodes {
		u := units[n.ID()]
		deps := make([]*unit, 0, len(n.Deps()))
		for _, d := range n.Deps() {
			deps = append(deps, units[d.ID()])
		}
		wg.Go(func() { e.runUnit(ctx, u, deps, sess) })
	}
	wg.Wait()

	var errs []error
	for _, n := range nodes {
		if u := units[n.ID()]; u.err != nil && !u.poisoned {
			errs = append(errs, u.err)
		}
	}
	return errors.Join(errs...)
}

// runUnit waits for the dependencies of u, then submits its task to the pool
// and waits for it. The unit's done channel is always closed on return.
func (e *Engine) runUnit(ctx context.Context, u *unit, deps []*unit, sess *session.Session) {
	defer close(u.done)
	id := u.node.ID()
	logger := ctxlog.FromContext(ctx).With("taskID", id)

	for _, dep := range deps {
		<-dep.done
		if dep.err != nil {
			logger.Warn("Skipping task, a dependency failed.", "dependency", dep.node.ID())
			u.err = &DependencyError{TaskID: id, Dependency: dep.node.ID(), Err: dep.err}
			u.poisoned = true
			return
		}
	}

	if err := ctx.Err(); err != nil {
		u.err = fmt.Errorf("task %q not executed: %w", id, err)
		return
	}

	h := u.node.Handle()
	done, err := e.pool.Submit(ctx, id, func(ctx context.Context) error {
		return e.execute(ctx, h, sess)
	})
	if err != nil {
		logger.Error("Task could not be submitted.", "error", err)
		e.monitor.TaskFailed(id, err)
		u.err = fmt.Errorf("task %q: %w", id, err)
		return
	}
	u.err = <-done
}

// execute runs one handle and reports its outcome to the monitor.
func (e *Engine) execute(ctx context.Context, h *task.Handle, sess *session.Session) error {
	id := h.ID()
	e.monitor.TaskStarted(id)
	start := time.Now()

	outcome, err := h.Execute(ctx, sess)
	elapsed := time.Since(start)
	switch {
	case err != nil:
		e.monitor.TaskFailed(id, err)
	case outcome == task.TimedOut:
		e.monitor.TaskTimedOut(id, elapsed)
	default:
		e.monitor.TaskCompleted(id, elapsed)
	}
	return err
}
