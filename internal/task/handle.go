package task

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/params"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/specialistvlad/stagegrid/internal/task")

// Outcome is how one Execute call ended.
type Outcome int

const (
	// Stored means a validated result was stored and AfterInvoke ran.
	Stored Outcome = iota
	// TimedOut means an invoke finished after the timeout; nothing was stored.
	TimedOut
	// Invalid means every attempt produced a result rejected by validation.
	Invalid
	// Failed means the last attempt raised an error and the error hook ran.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Stored:
		return "stored"
	case TimedOut:
		return "timed_out"
	case Invalid:
		return "invalid"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Options configures a Handle.
type Options struct {
	Retries int
	// Timeout of zero disables the timeout check.
	Timeout time.Duration
	Params  map[string]any
	// Validator is used when the task itself does not implement Validator.
	Validator Validator
}

// Handle is a configured task bound to one task id for the duration of a run.
type Handle struct {
	id      string
	impl    string
	task    Task
	retries int
	timeout time.Duration
	params  map[string]any
	check   Validator
}

// NewHandle binds t to id. impl is the registry reference t was built from.
func NewHandle(id, impl string, t Task, opts Options) *Handle {
	h := &Handle{
		id:      id,
		impl:    impl,
		task:    t,
		retries: opts.Retries,
		timeout: opts.Timeout,
		params:  maps.Clone(opts.Params),
		check:   opts.Validator,
	}
	if h.params == nil {
		h.params = map[string]any{}
	}
	if v, ok := t.(Validator); ok {
		h.check = v
	}
	return h
}

func (h *Handle) ID() string             { return h.id }
func (h *Handle) Impl() string           { return h.impl }
func (h *Handle) Task() Task             { return h.task }
func (h *Handle) Retries() int           { return h.retries }
func (h *Handle) Timeout() time.Duration { return h.timeout }

// Execute runs the task lifecycle once. Deferred #(key)# parameters are
// substituted once before the first attempt. Attempts run back to back with
// no delay while attempt <= retries.
//
// A non-nil error is only returned when the last attempt failed and the
// error hook did not swallow it. A timeout or exhausted validation ends with
// a nil error and no stored result.
func (h *Handle) Execute(ctx context.Context, env Env) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "stagegrid.task.execute",
		trace.WithAttributes(attribute.String("task.id", h.id), attribute.String("task.impl", h.impl)))
	defer span.End()

	logger := ctxlog.FromContext(ctx).With("taskID", h.id)
	call := &Call{
		TaskID: h.id,
		Params: params.Substitute(h.params, env.Input),
		Env:    env,
	}

	start := time.Now()
	for attempt := 0; attempt <= h.retries; attempt++ {
		call.Attempt = attempt
		span.SetAttributes(attribute.Int("task.attempts", attempt+1))
		attemptLogger := logger.With("attempt", attempt)

		h.task.BeforeInvoke(ctx, call)
		res, err := h.invoke(ctx, call)
		if err != nil {
			if attempt == h.retries {
				attemptLogger.Error("Task failed on its last attempt.", "error", err)
				hookErr := h.onError(ctx, call, err)
				if hookErr != nil {
					span.RecordError(hookErr)
					span.SetStatus(codes.Error, "task failed")
				}
				return Failed, hookErr
			}
			attemptLogger.Warn("Task attempt failed, retrying.", "error", err)
			continue
		}

		if elapsed := time.Since(start); h.timeout > 0 && elapsed > h.timeout {
			attemptLogger.Warn("Task finished after its timeout, result dropped.", "elapsed", elapsed, "timeout", h.timeout)
			h.onTimeout(ctx, call, elapsed)
			span.SetAttributes(attribute.String("task.outcome", TimedOut.String()))
			return TimedOut, nil
		}

		if !h.validate(ctx, call, res) {
			attemptLogger.Warn("Task result rejected by validation.", "code", resultCode(res))
			continue
		}

		if !env.StoreResult(h.id, res) {
			attemptLogger.Debug("Result already present, keeping the first one.")
		}
		h.task.AfterInvoke(ctx, call)
		attemptLogger.Debug("Task result stored.", "code", res.Code)
		span.SetAttributes(attribute.String("task.outcome", Stored.String()))
		return Stored, nil
	}

	logger.Warn("Task exhausted its attempts without a valid result.", "attempts", h.retries+1)
	span.SetAttributes(attribute.String("task.outcome", Invalid.String()))
	return Invalid, nil
}

// invoke calls the task and converts a panic into an attempt error.
func (h *Handle) invoke(ctx context.Context, call *Call) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("task %q panicked: %v", h.id, r)
		}
	}()
	return h.task.Invoke(ctx, call)
}

// validate rejects nil results, then defers to the configured validator.
func (h *Handle) validate(ctx context.Context, call *Call, res *Result) bool {
	if res == nil {
		return false
	}
	if h.check == nil {
		return true
	}
	return h.check.ValidateResult(ctx, call, res)
}

func (h *Handle) onError(ctx context.Context, call *Call, err error) error {
	if eh, ok := h.task.(ErrorHandler); ok {
		return eh.OnError(ctx, call, err)
	}
	return &Error{TaskID: h.id, Attempts: h.retries + 1, Err: err}
}

func (h *Handle) onTimeout(ctx context.Context, call *Call, elapsed time.Duration) {
	if th, ok := h.task.(TimeoutHandler); ok {
		th.OnTimeout(ctx, call, elapsed)
	}
}

func resultCode(r *Result) string {
	if r == nil {
		return "<nil>"
	}
	return r.Code
}
