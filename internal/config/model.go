package config

import (
	"fmt"
	"time"
)

const (
	// DefaultTimeout applies when a descriptor does not declare a timeout.
	DefaultTimeout = 1000 * time.Millisecond
	// MaxTimeout is the largest accepted timeout.
	MaxTimeout = 10000 * time.Millisecond
	// MaxRetries is the largest accepted retry budget.
	MaxRetries = 10
)

// Arrangement is one named configuration: ordered stages of expression
// strings and the descriptors of the tasks they reference.
//
// Stage 0 is the pre-stage. With two or more stages the last one is the
// post-stage; everything in between runs concurrently.
type Arrangement struct {
	Name        string
	Description string
	Stages      [][]string
	Tasks       map[string]*TaskDescriptor
}

// TaskDescriptor describes how to build and configure the handle of one task.
type TaskDescriptor struct {
	ID string
	// Impl is the registry reference of the implementation.
	Impl    string
	Retries int
	// Timeout is checked after each successful invoke. Zero disables it.
	Timeout time.Duration
	Params  []Param
	// Validate is an optional CEL expression over the task's result.
	Validate string
	// Resolved holds the typed parameters produced by params.Resolve.
	Resolved map[string]any
}

// NewTask returns a descriptor carrying the default retry budget and timeout.
func NewTask(id, impl string, params ...Param) *TaskDescriptor {
	return &TaskDescriptor{
		ID:      id,
		Impl:    impl,
		Timeout: DefaultTimeout,
		Params:  params,
	}
}

// Check validates the descriptor's id and budgets against the accepted ranges.
// A blank implementation reference is reported later, when a handle is resolved.
func (d *TaskDescriptor) Check() error {
	if d.ID == "" {
		return Invalidf("task id must not be empty")
	}
	if d.Retries < 0 || d.Retries > MaxRetries {
		return Invalidf("task %q: retries must be between 0 and %d, got %d", d.ID, MaxRetries, d.Retries)
	}
	if d.Timeout < 0 || d.Timeout > MaxTimeout {
		return Invalidf("task %q: timeout must be between 0 and %dms, got %dms", d.ID, MaxTimeout.Milliseconds(), d.Timeout.Milliseconds())
	}
	return nil
}

// Check validates every descriptor of the arrangement.
func (a *Arrangement) Check() error {
	for key, d := range a.Tasks {
		if d == nil {
			return Invalidf("arrangement %q: task %q has no descriptor", a.Name, key)
		}
		if d.ID != key {
			return Invalidf("arrangement %q: task key %q does not match id %q", a.Name, key, d.ID)
		}
		if err := d.Check(); err != nil {
			return fmt.Errorf("arrangement %q: %w", a.Name, err)
		}
	}
	return nil
}
