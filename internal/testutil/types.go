package testutil

import "time"

// ExecutionRecord holds the start of the first attempt and the end of the
// last attempt of one task.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}
