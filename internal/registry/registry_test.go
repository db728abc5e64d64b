package registry

import (
	"context"
	"testing"

	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct {
	task.Base
	calls int
}

func (echo) Invoke(_ context.Context, call *task.Call) (*task.Result, error) {
	return task.NewSuccess(call.TaskID), nil
}

type echoModule struct{}

func (echoModule) Register(r *Registry) {
	r.Register("echo", func() task.Task { return &echo{} })
}

func TestRegisterAndResolve(t *testing.T) {
	r := New(echoModule{})

	assert.True(t, r.Has("echo"))
	assert.Equal(t, []string{"echo"}, r.Refs())

	first, err := r.Resolve("echo")
	require.NoError(t, err)
	second, err := r.Resolve("echo")
	require.NoError(t, err)
	assert.NotSame(t, first, second, "every resolve builds a fresh instance")
}

func TestResolve_Unknown(t *testing.T) {
	r := New()
	_, err := r.Resolve("missing")
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.ErrorContains(t, err, `"missing"`)
}

func TestResolve_NilTask(t *testing.T) {
	r := New()
	r.Register("nil", func() task.Task { return nil })
	_, err := r.Resolve("nil")
	assert.ErrorContains(t, err, "nil task")
}

func TestRegister_Panics(t *testing.T) {
	t.Run("duplicate reference", func(t *testing.T) {
		r := New(echoModule{})
		assert.PanicsWithValue(t, "task implementation 'echo' already registered", func() {
			echoModule{}.Register(r)
		})
	})

	t.Run("empty reference", func(t *testing.T) {
		assert.Panics(t, func() { New().Register("", func() task.Task { return &echo{} }) })
	})

	t.Run("nil factory", func(t *testing.T) {
		assert.Panics(t, func() { New().Register("x", nil) })
	})
}
