package session

import (
	"errors"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/specialistvlad/stagegrid/internal/inmemorystore"
	"github.com/specialistvlad/stagegrid/internal/task"
)

var (
	// ErrAlreadyStarted is returned when a run is attempted on a session
	// that already completed one.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrBusy is returned when a run is attempted while another run on the
	// same session is in progress.
	ErrBusy = errors.New("session is already running")
)

// Session is the execution context of one run.
type Session struct {
	id string

	mu     sync.RWMutex
	inputs map[string]any

	results *inmemorystore.Store
	handles *HandleCache

	started atomic.Bool
	stopped atomic.Bool
	running atomic.Bool
}

// New creates a session owning a copy of inputs.
func New(inputs map[string]any) *Session {
	in := maps.Clone(inputs)
	if in == nil {
		in = map[string]any{}
	}
	return &Session{
		id:      uuid.New().String(),
		inputs:  in,
		results: inmemorystore.New(),
		handles: NewHandleCache(),
	}
}

// ID returns the run id of the session.
func (s *Session) ID() string { return s.id }

// SetInput sets an input parameter. Inputs are meant to be written before
// the run starts.
func (s *Session) SetInput(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs[key] = v
}

// Input implements task.Env.
func (s *Session) Input(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.inputs[key]
	return v, ok
}

// Inputs returns a copy of the input parameters.
func (s *Session) Inputs() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.inputs)
}

// Result implements task.Env.
func (s *Session) Result(id string) (*task.Result, bool) {
	return s.results.Get(id)
}

// StoreResult implements task.Env with first-write-wins semantics.
func (s *Session) StoreResult(id string, r *task.Result) bool {
	return s.results.Put(id, r)
}

// Results returns a snapshot of the result mapping.
func (s *Session) Results() map[string]*task.Result {
	return s.results.Snapshot()
}

// ResultIDs returns the sorted ids that have a stored result.
func (s *Session) ResultIDs() []string {
	return s.results.IDs()
}

// Handles returns the task-handle cache of the session.
func (s *Session) Handles() *HandleCache { return s.handles }

// Started reports whether a run on this session completed.
func (s *Session) Started() bool { return s.started.Load() }

// Stopped reports whether a run on this session was halted by a failure.
func (s *Session) Stopped() bool { return s.stopped.Load() }

// Begin claims the session for a run. It fails with ErrAlreadyStarted once a
// run completed and with ErrBusy while another run holds the session.
func (s *Session) Begin() error {
	if s.started.Load() {
		return ErrAlreadyStarted
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrBusy
	}
	if s.started.Load() {
		s.running.Store(false)
		return ErrAlreadyStarted
	}
	return nil
}

// End releases the claim taken by Begin.
func (s *Session) End() { s.running.Store(false) }

// MarkStarted records that a run completed every stage.
func (s *Session) MarkStarted() { s.started.Store(true) }

// MarkStopped records that a run was halted by a failure.
func (s *Session) MarkStopped() { s.stopped.Store(true) }

var _ task.Env = (*Session)(nil)
