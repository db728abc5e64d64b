package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/stagegrid/internal/compiler"
	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/dag"
	"github.com/specialistvlad/stagegrid/internal/monitor"
	"github.com/specialistvlad/stagegrid/internal/params"
	"github.com/specialistvlad/stagegrid/internal/pool"
	"github.com/specialistvlad/stagegrid/internal/session"
)

var (
	// ErrAlreadyStarted is returned by Run on a session that already
	// completed a run.
	ErrAlreadyStarted = session.ErrAlreadyStarted
	// ErrEmptyArrangement is returned by Run and Validate for a missing
	// arrangement or one without stages.
	ErrEmptyArrangement = fmt.Errorf("%w: arrangement is missing or has no stages", config.ErrInvalid)
)

// Engine runs arrangements on a shared worker pool.
type Engine struct {
	resolver compiler.Resolver
	pool     *pool.Pool
	ownsPool bool
	monitor  monitor.Monitor
}

// Option configures an Engine.
type Option func(*Engine)

// WithPool runs tasks on p. The caller keeps ownership of p; Close does not
// shut it down.
func WithPool(p *pool.Pool) Option {
	return func(e *Engine) { e.pool = p }
}

// WithMonitor reports task lifecycle events to m.
func WithMonitor(m monitor.Monitor) Option {
	return func(e *Engine) { e.monitor = m }
}

// New creates an engine resolving implementation references with resolver.
// Without WithPool the engine starts and owns a pool of default size.
func New(ctx context.Context, resolver compiler.Resolver, opts ...Option) *Engine {
	e := &Engine{resolver: resolver}
	for _, opt := range opts {
		opt(e)
	}
	if e.monitor == nil {
		e.monitor = monitor.Nop()
	}
	if e.pool == nil {
		e.pool = pool.New(ctx, pool.WithQueueObserver(e.monitor.TaskQueued))
		e.ownsPool = true
	}
	return e
}

// Close shuts down the pool if the engine owns it.
func (e *Engine) Close(ctx context.Context) error {
	if !e.ownsPool {
		return nil
	}
	return e.pool.Shutdown(ctx)
}

// Run executes arr on sess and blocks until the run completed or failed.
//
// Configuration errors are returned before any task executes. A task
// failure is returned after the stage it belongs to has been joined, and no
// later stage is started. The session is marked started only when every
// stage completed; its handle cache is then cleared.
func (e *Engine) Run(ctx context.Context, arr *config.Arrangement, sess *session.Session) error {
	if sess == nil {
		return errors.New("engine: nil session")
	}
	if err := sess.Begin(); err != nil {
		return err
	}
	defer sess.End()

	if arr == nil || len(arr.Stages) == 0 {
		return ErrEmptyArrangement
	}

	ctx, logger := ctxlog.With(ctx, "runID", sess.ID(), "arrangement", arr.Name)
	logger.Info("🚀 Starting run.", "stages", len(arr.Stages), "tasks", len(arr.Tasks))
	start := time.Now()

	tasks, err := resolveParams(arr)
	if err != nil {
		return err
	}

	if err := e.run(ctx, arr.Stages, tasks, sess); err != nil {
		sess.MarkStopped()
		logger.Error("Run failed.", "error", err, "elapsed", time.Since(start))
		return err
	}

	sess.MarkStarted()
	sess.Handles().Clear()
	logger.Info("🏁 Run finished.", "results", len(sess.ResultIDs()), "elapsed", time.Since(start))
	return nil
}

func (e *Engine) run(ctx context.Context, stages [][]string, tasks map[string]*config.TaskDescriptor, sess *session.Session) error {
	cache := sess.Handles()
	last := len(stages) - 1

	pre, err := e.compile(ctx, 0, stages[0], tasks, cache)
	if err != nil {
		return err
	}
	if err := e.joinStage(ctx, 0, "pre", pre, sess); err != nil {
		return err
	}
	if last == 0 {
		return nil
	}

	// Every middle stage is compiled before any of them is launched.
	middle := make([]*dag.Graph, 0, last-1)
	for i := 1; i < last; i++ {
		g, err := e.compile(ctx, i, stages[i], tasks, cache)
		if err != nil {
			return err
		}
		middle = append(middle, g)
	}

	group := newSafeGroup(ctxlog.FromContext(ctx))
	for i, g := range middle {
		group.Go(func() error {
			return e.joinStage(ctx, i+1, "middle", g, sess)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	post, err := e.compile(ctx, last, stages[last], tasks, cache)
	if err != nil {
		return err
	}
	return e.joinStage(ctx, last, "post", post, sess)
}

func (e *Engine) compile(ctx context.Context, idx int, stage []string, tasks map[string]*config.TaskDescriptor, cache compiler.Cache) (*dag.Graph, error) {
	g, err := compiler.Compile(ctx, stage, tasks, cache, e.resolver)
	if err != nil {
		return nil, fmt.Errorf("stage %d: %w", idx, err)
	}
	return g, nil
}

func (e *Engine) joinStage(ctx context.Context, idx int, kind string, g *dag.Graph, sess *session.Session) error {
	ctx, logger := ctxlog.With(ctx, "stage", idx, "kind", kind)
	logger.Debug("Executing stage.", "tasks", g.Len())

	if err := e.runStage(ctx, g, sess); err != nil {
		logger.Error("Stage failed.", "error", err)
		return fmt.Errorf("stage %d: %w", idx, err)
	}
	logger.Debug("Stage completed.")
	return nil
}

// Validate checks arr the way Run does without executing anything:
// parameters are resolved and every stage is compiled.
func (e *Engine) Validate(ctx context.Context, arr *config.Arrangement) error {
	if arr == nil || len(arr.Stages) == 0 {
		return ErrEmptyArrangement
	}
	tasks, err := resolveParams(arr)
	if err != nil {
		return err
	}
	cache := session.NewHandleCache()
	for i, stage := range arr.Stages {
		if _, err := e.compile(ctx, i, stage, tasks, cache); err != nil {
			return err
		}
	}
	return nil
}

// resolveParams checks every descriptor and returns copies carrying the
// resolved parameters. The caller's descriptors are not modified.
func resolveParams(arr *config.Arrangement) (map[string]*config.TaskDescriptor, error) {
	if err := arr.Check(); err != nil {
		return nil, err
	}
	out := make(map[string]*config.TaskDescriptor, len(arr.Tasks))
	for id, d := range arr.Tasks {
		resolved, err := params.Resolve(d.Params)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", id, err)
		}
		c := *d
		c.Resolved = resolved
		out[id] = &c
	}
	return out, nil
}
