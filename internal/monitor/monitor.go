// Package monitor observes the lifecycle of task executions.
package monitor

import (
	"log/slog"
	"time"
)

// Monitor receives task lifecycle events. Implementations must be safe for
// concurrent use; events of different tasks arrive from different workers.
type Monitor interface {
	TaskQueued(id string, wait time.Duration)
	TaskStarted(id string)
	TaskCompleted(id string, elapsed time.Duration)
	TaskTimedOut(id string, elapsed time.Duration)
	TaskFailed(id string, err error)
}

type nop struct{}

// Nop returns a Monitor that discards every event.
func Nop() Monitor { return nop{} }

func (nop) TaskQueued(string, time.Duration)    {}
func (nop) TaskStarted(string)                  {}
func (nop) TaskCompleted(string, time.Duration) {}
func (nop) TaskTimedOut(string, time.Duration)  {}
func (nop) TaskFailed(string, error)            {}

type multi []Monitor

// Multi fans every event out to ms in order. Nil monitors are skipped.
func Multi(ms ...Monitor) Monitor {
	out := make(multi, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (m multi) TaskQueued(id string, wait time.Duration) {
	for _, x := range m {
		x.TaskQueued(id, wait)
	}
}

func (m multi) TaskStarted(id string) {
	for _, x := range m {
		x.TaskStarted(id)
	}
}

func (m multi) TaskCompleted(id string, elapsed time.Duration) {
	for _, x := range m {
		x.TaskCompleted(id, elapsed)
	}
}

func (m multi) TaskTimedOut(id string, elapsed time.Duration) {
	for _, x := range m {
		x.TaskTimedOut(id, elapsed)
	}
}

func (m multi) TaskFailed(id string, err error) {
	for _, x := range m {
		x.TaskFailed(id, err)
	}
}

// Log writes events to a slog logger.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Monitor logging to logger, or to slog.Default when nil.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) TaskQueued(id string, wait time.Duration) {
	l.logger.Debug("Task waited in queue.", "taskID", id, "wait", wait)
}

func (l *Log) TaskStarted(id string) {
	l.logger.Debug("Task started.", "taskID", id)
}

func (l *Log) TaskCompleted(id string, elapsed time.Duration) {
	l.logger.Info("Task completed.", "taskID", id, "elapsed", elapsed)
}

func (l *Log) TaskTimedOut(id string, elapsed time.Duration) {
	l.logger.Warn("Task timed out.", "taskID", id, "elapsed", elapsed)
}

func (l *Log) TaskFailed(id string, err error) {
	l.logger.Error("Task failed.", "taskID", id, "error", err)
}
