package engine

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// safeGroup is an errgroup.Group that converts panics into errors. It does
// not derive a context, so a failing member never cancels its siblings.
type safeGroup struct {
	group  errgroup.Group
	logger *slog.Logger
}

func newSafeGroup(logger *slog.Logger) *safeGroup {
	return &safeGroup{logger: logger}
}

// Go runs fn in a new goroutine.
func (sg *safeGroup) Go(fn func() error) {
	sg.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				sg.logger.Error("Goroutine panic recovered.", "panic", r, "stack", string(debug.Stack()))
				err = fmt.Errorf("goroutine panic: %v", r)
			}
		}()
		return fn()
	})
}

// Wait blocks until every goroutine returned and reports the first error.
func (sg *safeGroup) Wait() error {
	return sg.group.Wait()
}
