package task

import "fmt"

// Error is returned by the default error hook once every attempt failed.
type Error struct {
	TaskID   string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("task %q failed after %d attempt(s): %v", e.TaskID, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
