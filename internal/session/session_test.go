package session

import (
	"context"
	"sync"
	"testing"

	"github.com/specialistvlad/stagegrid/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	inputs := map[string]any{"userId": 7}
	s := New(inputs)

	assert.NotEmpty(t, s.ID())
	assert.NotEqual(t, s.ID(), New(nil).ID())

	v, ok := s.Input("userId")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	inputs["userId"] = 8
	v, _ = s.Input("userId")
	assert.Equal(t, 7, v, "the session owns a copy of its inputs")

	assert.False(t, s.Started())
	assert.False(t, s.Stopped())
}

func TestInputs(t *testing.T) {
	s := New(nil)
	s.SetInput("a", "x")

	got := s.Inputs()
	assert.Equal(t, map[string]any{"a": "x"}, got)

	got["a"] = "changed"
	v, _ := s.Input("a")
	assert.Equal(t, "x", v)

	_, ok := s.Input("missing")
	assert.False(t, ok)
}

func TestResults(t *testing.T) {
	s := New(nil)
	first := task.NewSuccess(1)

	assert.True(t, s.StoreResult("A", first))
	assert.False(t, s.StoreResult("A", task.NewSuccess(2)))

	got, ok := s.Result("A")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, []string{"A"}, s.ResultIDs())
	assert.Len(t, s.Results(), 1)
}

func TestBegin(t *testing.T) {
	t.Run("second run after completion is rejected", func(t *testing.T) {
		s := New(nil)
		require.NoError(t, s.Begin())
		s.MarkStarted()
		s.End()

		assert.ErrorIs(t, s.Begin(), ErrAlreadyStarted)
	})

	t.Run("concurrent run is rejected", func(t *testing.T) {
		s := New(nil)
		require.NoError(t, s.Begin())
		assert.ErrorIs(t, s.Begin(), ErrBusy)
		s.End()
		assert.NoError(t, s.Begin())
	})

	t.Run("only one of many racing runs wins", func(t *testing.T) {
		s := New(nil)
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if s.Begin() == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("stopped flag", func(t *testing.T) {
		s := New(nil)
		s.MarkStopped()
		assert.True(t, s.Stopped())
		assert.False(t, s.Started())
	})
}

func TestHandleCache(t *testing.T) {
	c := NewHandleCache()
	noop := task.Func(func(context.Context, *task.Call) (*task.Result, error) { return task.NewSuccess(nil), nil })
	h := task.NewHandle("A", "noop", noop, task.Options{})

	_, ok := c.Lookup("A")
	assert.False(t, ok)

	c.Store("A", h)
	got, ok := c.Lookup("A")
	require.True(t, ok)
	assert.Same(t, h, got)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Lookup("A")
	assert.False(t, ok)
}
