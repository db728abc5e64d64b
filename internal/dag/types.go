package dag

import (
	"sync"

	"github.com/specialistvlad/stagegrid/internal/task"
)

// Node is one task of a stage graph. It references the nodes it depends on
// and never owns its dependents.
type Node struct {
	id     string
	handle *task.Handle

	deps     map[string]*Node
	depOrder []string
}

// ID returns the task id of the node.
func (n *Node) ID() string { return n.id }

// Handle returns the task handle the node executes.
func (n *Node) Handle() *task.Handle { return n.handle }

// Deps returns the nodes n depends on, in insertion order.
func (n *Node) Deps() []*Node {
	out := make([]*Node, 0, len(n.depOrder))
	for _, id := range n.depOrder {
		out = append(out, n.deps[id])
	}
	return out
}

// Graph is a directed graph of task nodes scoped to one stage.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*Node
	order []string
}
