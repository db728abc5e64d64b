package dag

import (
	"context"
	"testing"

	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(id string) *task.Handle {
	noop := task.Func(func(context.Context, *task.Call) (*task.Result, error) {
		return task.NewSuccess(id), nil
	})
	return task.NewHandle(id, "noop", noop, task.Options{})
}

func graphOf(ids ...string) *Graph {
	g := New()
	for _, id := range ids {
		g.AddNode(id, handle(id))
	}
	return g
}

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
	assert.Equal(t, 0, g.Len())
}

func TestAddNode(t *testing.T) {
	g := New()
	first := handle("a")

	g.AddNode("a", first)
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.ID())
	assert.Same(t, first, nodeA.Handle())
	assert.Empty(t, nodeA.Deps())

	g.AddNode("a", handle("a")) // Test idempotency
	assert.Len(t, g.nodes, 1)
	nodeA, _ = g.Node("a")
	assert.Same(t, first, nodeA.Handle(), "the first insertion wins")

	g.AddNode("b", handle("b"))
	assert.Equal(t, []string{"a", "b"}, g.IDs())
	assert.Len(t, g.Nodes(), 2)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := graphOf("a", "b")

		err := g.AddEdge("b", "a") // b depends on a
		require.NoError(t, err)

		nodeA, _ := g.Node("a")
		nodeB, _ := g.Node("b")
		assert.Equal(t, []*Node{nodeA}, nodeB.Deps())
		assert.Empty(t, nodeA.Deps())
		assert.Equal(t, []string{"a"}, g.Dependencies("b"))
	})

	t.Run("duplicate edges accumulate as a set", func(t *testing.T) {
		g := graphOf("a", "b")
		require.NoError(t, g.AddEdge("b", "a"))
		require.NoError(t, g.AddEdge("b", "a"))
		assert.Equal(t, []string{"a"}, g.Dependencies("b"))
	})

	t.Run("missing endpoints are a no-op", func(t *testing.T) {
		g := graphOf("a")
		assert.NoError(t, g.AddEdge("dne", "a"))
		assert.NoError(t, g.AddEdge("a", "dne"))
		assert.Empty(t, g.Dependencies("a"))
	})

	t.Run("self edge is a configuration error", func(t *testing.T) {
		g := graphOf("a")
		err := g.AddEdge("a", "a")
		assert.ErrorIs(t, err, config.ErrInvalid)
		assert.ErrorContains(t, err, "cannot depend on itself")
	})
}

func TestDependencies_UnknownID(t *testing.T) {
	g := New()
	deps := g.Dependencies("nope")
	assert.NotNil(t, deps)
	assert.Empty(t, deps)
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		g := New()
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("graph with nodes but no edges has no cycles", func(t *testing.T) {
		g := graphOf("a", "b", "c")
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := graphOf("a", "b", "c", "d")
		require.NoError(t, g.AddEdge("b", "a"))
		require.NoError(t, g.AddEdge("c", "b"))
		require.NoError(t, g.AddEdge("c", "a")) // Transitive edge
		require.NoError(t, g.AddEdge("d", "c"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		g := graphOf("a", "b", "c", "d")
		require.NoError(t, g.AddEdge("b", "a"))
		require.NoError(t, g.AddEdge("c", "a"))
		require.NoError(t, g.AddEdge("d", "b"))
		require.NoError(t, g.AddEdge("d", "c"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("simple direct cycle is detected", func(t *testing.T) {
		g := graphOf("a", "b")
		require.NoError(t, g.AddEdge("b", "a"))
		require.NoError(t, g.AddEdge("a", "b")) // Cycle
		err := g.DetectCycles()
		assert.ErrorIs(t, err, config.ErrInvalid)
		assert.ErrorContains(t, err, "cycle detected: a -> b -> a")
	})

	t.Run("longer cycle is detected", func(t *testing.T) {
		g := graphOf("a", "b", "c", "d")
		require.NoError(t, g.AddEdge("b", "a"))
		require.NoError(t, g.AddEdge("c", "b"))
		require.NoError(t, g.AddEdge("d", "c"))
		require.NoError(t, g.AddEdge("a", "d")) // Cycle back to the start
		err := g.DetectCycles()
		assert.ErrorContains(t, err, "cycle detected")
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := graphOf("a", "b", "x", "y", "z")
		// Component 1 (valid)
		require.NoError(t, g.AddEdge("b", "a"))

		// Component 2 (has a cycle)
		require.NoError(t, g.AddEdge("y", "x"))
		require.NoError(t, g.AddEdge("z", "y"))
		require.NoError(t, g.AddEdge("y", "z")) // Cycle

		err := g.DetectCycles()
		assert.ErrorContains(t, err, "cycle detected")
		assert.ErrorContains(t, err, "y -> z -> y")
	})
}
