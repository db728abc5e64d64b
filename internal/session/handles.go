package session

import (
	"sync"

	"github.com/specialistvlad/stagegrid/internal/task"
)

// HandleCache maps task ids to the handles instantiated for them during a run.
type HandleCache struct {
	handles sync.Map // Key: task id, Value: *task.Handle
}

// NewHandleCache returns an empty cache.
func NewHandleCache() *HandleCache {
	return &HandleCache{}
}

// Lookup returns the cached handle of id.
func (c *HandleCache) Lookup(id string) (*task.Handle, bool) {
	v, ok := c.handles.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*task.Handle), true
}

// Store caches h under id, replacing any previous handle.
func (c *HandleCache) Store(id string, h *task.Handle) {
	c.handles.Store(id, h)
}

// Len returns the number of cached handles.
func (c *HandleCache) Len() int {
	n := 0
	c.handles.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Clear drops every cached handle.
func (c *HandleCache) Clear() {
	c.handles.Clear()
}
