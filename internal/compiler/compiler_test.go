package compiler

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/session"
	"github.com/specialistvlad/stagegrid/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingResolver builds a fresh task.Func per Resolve call and records refs.
type countingResolver struct {
	refs []string
	fail map[string]error
}

func (r *countingResolver) Resolve(ref string) (task.Task, error) {
	r.refs = append(r.refs, ref)
	if err, ok := r.fail[ref]; ok {
		return nil, err
	}
	return task.Func(func(context.Context, *task.Call) (*task.Result, error) {
		return task.NewSuccess(nil), nil
	}), nil
}

func descriptors(ids ...string) map[string]*config.TaskDescriptor {
	m := make(map[string]*config.TaskDescriptor, len(ids))
	for _, id := range ids {
		m[id] = config.NewTask(id, "noop")
	}
	return m
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    Expression
		wantErr bool
	}{
		{name: "single id", raw: "A", want: Expression{Left: []string{"A"}}},
		{name: "independent ids", raw: "A,B", want: Expression{Left: []string{"A", "B"}}},
		{name: "fan in", raw: "A,B:C", want: Expression{Left: []string{"A", "B"}, Right: []string{"C"}}},
		{name: "whitespace is trimmed", raw: " A , B : C ", want: Expression{Left: []string{"A", "B"}, Right: []string{"C"}}},
		{name: "empty id", raw: "A,,B", wantErr: true},
		{name: "empty right group", raw: "A:", wantErr: true},
		{name: "two colons", raw: "A:B:C", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, config.ErrInvalid)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.raw, diff)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	ctx := context.Background()

	t.Run("right group depends on every left task", func(t *testing.T) {
		// --- Arrange ---
		tasks := descriptors("A", "B", "C", "D")
		cache := session.NewHandleCache()
		res := &countingResolver{}

		// --- Act ---
		g, err := Compile(ctx, []string{"A,B:C,D"}, tasks, cache, res)

		// --- Assert ---
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, g.IDs())
		assert.ElementsMatch(t, []string{"A", "B"}, g.Dependencies("C"))
		assert.ElementsMatch(t, []string{"A", "B"}, g.Dependencies("D"))
		assert.Empty(t, g.Dependencies("A"))
		assert.Equal(t, 4, cache.Len())
	})

	t.Run("expressions of one stage merge into one graph", func(t *testing.T) {
		tasks := descriptors("1", "2", "3")
		g, err := Compile(ctx, []string{"1,2", "1,2:3"}, tasks, session.NewHandleCache(), &countingResolver{})

		require.NoError(t, err)
		assert.Equal(t, 3, g.Len())
		assert.ElementsMatch(t, []string{"1", "2"}, g.Dependencies("3"))
	})

	t.Run("a task appearing twice gets one node and one handle", func(t *testing.T) {
		tasks := descriptors("A", "B", "C")
		res := &countingResolver{}

		g, err := Compile(ctx, []string{"A:B", "A:C"}, tasks, session.NewHandleCache(), res)

		require.NoError(t, err)
		assert.Equal(t, 3, g.Len())
		assert.Len(t, res.refs, 3)
	})

	t.Run("cycle across expressions is rejected", func(t *testing.T) {
		tasks := descriptors("A", "B")
		_, err := Compile(ctx, []string{"A:B", "B:A"}, tasks, session.NewHandleCache(), &countingResolver{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "cycle detected")
	})

	t.Run("self dependency is rejected", func(t *testing.T) {
		tasks := descriptors("A")
		_, err := Compile(ctx, []string{"A:A"}, tasks, session.NewHandleCache(), &countingResolver{})

		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("undescribed task id is rejected", func(t *testing.T) {
		tasks := descriptors("A")
		_, err := Compile(ctx, []string{"A:Z"}, tasks, session.NewHandleCache(), &countingResolver{})

		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrInvalid)
		assert.Contains(t, err.Error(), `"Z"`)
	})

	t.Run("resolver error is returned", func(t *testing.T) {
		boom := errors.New("boom")
		tasks := descriptors("A")
		res := &countingResolver{fail: map[string]error{"noop": boom}}

		_, err := Compile(ctx, []string{"A"}, tasks, session.NewHandleCache(), res)

		assert.ErrorIs(t, err, boom)
	})
}

func TestResolveHandle(t *testing.T) {
	t.Run("cached handle with matching impl is reused", func(t *testing.T) {
		// --- Arrange ---
		tasks := descriptors("A")
		cache := session.NewHandleCache()
		res := &countingResolver{}
		first, err := ResolveHandle("A", tasks, cache, res)
		require.NoError(t, err)

		// --- Act ---
		second, err := ResolveHandle("A", tasks, cache, res)

		// --- Assert ---
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Len(t, res.refs, 1)
	})

	t.Run("changed impl replaces the cached handle", func(t *testing.T) {
		tasks := descriptors("A")
		cache := session.NewHandleCache()
		res := &countingResolver{}
		first, err := ResolveHandle("A", tasks, cache, res)
		require.NoError(t, err)

		tasks["A"].Impl = "other"
		second, err := ResolveHandle("A", tasks, cache, res)

		require.NoError(t, err)
		assert.NotSame(t, first, second)
		assert.Equal(t, "other", second.Impl())
		cached, ok := cache.Lookup("A")
		require.True(t, ok)
		assert.Same(t, second, cached)
	})

	t.Run("blank impl is a configuration error", func(t *testing.T) {
		tasks := map[string]*config.TaskDescriptor{"A": config.NewTask("A", "  ")}
		res := &countingResolver{}

		_, err := ResolveHandle("A", tasks, session.NewHandleCache(), res)

		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrInvalid)
		assert.Empty(t, res.refs)
	})

	t.Run("descriptor budgets and params reach the handle", func(t *testing.T) {
		d := config.NewTask("A", "noop")
		d.Retries = 3
		d.Resolved = map[string]any{"k": "v"}
		tasks := map[string]*config.TaskDescriptor{"A": d}

		h, err := ResolveHandle("A", tasks, session.NewHandleCache(), &countingResolver{})

		require.NoError(t, err)
		assert.Equal(t, "A", h.ID())
		assert.Equal(t, 3, h.Retries())
		assert.Equal(t, config.DefaultTimeout, h.Timeout())
	})

	t.Run("invalid validation expression is a configuration error", func(t *testing.T) {
		d := config.NewTask("A", "noop")
		d.Validate = "result.code +"
		tasks := map[string]*config.TaskDescriptor{"A": d}

		_, err := ResolveHandle("A", tasks, session.NewHandleCache(), &countingResolver{})

		assert.ErrorIs(t, err, config.ErrInvalid)
	})
}
