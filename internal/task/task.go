package task

import (
	"context"
	"fmt"
	"time"
)

// Env is the part of a run's session visible to a task.
type Env interface {
	// Input returns a caller-supplied input parameter.
	Input(key string) (any, bool)
	// Result returns the stored result of a task of the same run.
	Result(id string) (*Result, bool)
	// StoreResult stores r under id unless a result is already present.
	StoreResult(id string, r *Result) bool
}

// Call describes one invocation of a task. Params is the substituted
// snapshot owned by this invocation.
type Call struct {
	TaskID  string
	Attempt int
	Params  map[string]any
	Env     Env
}

// Param returns the named parameter, or nil.
func (c *Call) Param(name string) any {
	return c.Params[name]
}

// StringParam returns the named parameter formatted as a string. Missing
// or nil parameters yield "".
func (c *Call) StringParam(name string) string {
	v, ok := c.Params[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// DependencyResult returns the stored result of another task of the run.
func (c *Call) DependencyResult(id string) (*Result, bool) {
	return c.Env.Result(id)
}

// Task is implemented by every runnable task.
type Task interface {
	BeforeInvoke(ctx context.Context, call *Call)
	Invoke(ctx context.Context, call *Call) (*Result, error)
	AfterInvoke(ctx context.Context, call *Call)
}

// Validator is an optional hook deciding whether an invoke result is
// stored. A rejected result consumes one attempt of the retry budget.
type Validator interface {
	ValidateResult(ctx context.Context, call *Call, r *Result) bool
}

// ErrorHandler is an optional hook called when the last allowed attempt
// fails. The returned error fails the task's execution unit; returning nil
// swallows the failure and leaves no result.
type ErrorHandler interface {
	OnError(ctx context.Context, call *Call, err error) error
}

// TimeoutHandler is an optional hook called when a successful invoke
// finished after the task's timeout.
type TimeoutHandler interface {
	OnTimeout(ctx context.Context, call *Call, elapsed time.Duration)
}

// Base implements the mandatory hooks as no-ops. Embed it to implement only Invoke.
type Base struct{}

func (Base) BeforeInvoke(context.Context, *Call) {}

func (Base) AfterInvoke(context.Context, *Call) {}

// Func adapts a plain function to Task.
type Func func(ctx context.Context, call *Call) (*Result, error)

func (Func) BeforeInvoke(context.Context, *Call) {}

func (f Func) Invoke(ctx context.Context, call *Call) (*Result, error) {
	return f(ctx, call)
}

func (Func) AfterInvoke(context.Context, *Call) {}
