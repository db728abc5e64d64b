// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// store of task results for a single run.
//
// # Purpose
//
// Every task of a run writes its outcome envelope here under its task id,
// and downstream tasks read their dependencies' results from it. The store
// is created fresh for each session and is never persisted.
//
// # Write-Once Semantics
//
// Put has putIfAbsent semantics: the first writer for a task id wins and
// later writes for the same id are silently dropped. This keeps a result
// stable once a dependent may have observed it.
//
// # Concurrency Model
//
// The store uses sync.Map because:
//   - **Independent Keys:** Each task writes only its own id
//   - **Concurrent Reads + Writes:** Dependents read while siblings write
//   - **Stable Key Space:** Ids are known upfront, values are written once
package inmemorystore

import (
	"sort"
	"sync"

	"github.com/specialistvlad/stagegrid/internal/task"
)

// Store is an in-memory result mapping keyed by task id.
type Store struct {
	results sync.Map // Key: task id, Value: *task.Result
}

// New creates a new, empty result store.
func New() *Store {
	return &Store{}
}

// Put stores r under id unless a result is already present. It reports
// whether r was stored.
func (s *Store) Put(id string, r *task.Result) bool {
	_, loaded := s.results.LoadOrStore(id, r)
	return !loaded
}

// Get returns the result stored under id.
func (s *Store) Get(id string) (*task.Result, bool) {
	v, ok := s.results.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*task.Result), true
}

// Snapshot returns a copy of every stored result.
func (s *Store) Snapshot() map[string]*task.Result {
	out := make(map[string]*task.Result)
	s.results.Range(func(k, v any) bool {
		out[k.(string)] = v.(*task.Result)
		return true
	})
	return out
}

// IDs returns the ids with a stored result, sorted.
func (s *Store) IDs() []string {
	var ids []string
	s.results.Range(func(k, _ any) bool {
		ids = append(ids, k.(string))
		return true
	})
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored results.
func (s *Store) Len() int {
	n := 0
	s.results.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
