package dag

import (
	"strings"

	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
	}
}

// AddNode adds a node for id executing h. If a node with the same id
// already exists, the function does nothing.
func (g *Graph) AddNode(id string, h *task.Handle) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &Node{
		id:     id,
		handle: h,
		deps:   make(map[string]*Node),
	}
	g.order = append(g.order, id)
}

// AddEdge records that id depends on dependsOnID. A self-edge is a
// configuration error. If either node is missing, or the edge already
// exists, the call is a no-op.
func (g *Graph) AddEdge(id, dependsOnID string) error {
	if id == dependsOnID {
		return config.Invalidf("task %q cannot depend on itself", id)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	dep, ok := g.nodes[dependsOnID]
	if !ok {
		return nil
	}
	if _, exists := n.deps[dependsOnID]; exists {
		return nil
	}

	n.deps[dependsOnID] = dep
	n.depOrder = append(n.depOrder, dependsOnID)
	return nil
}

// Node returns the node of id.
func (g *Graph) Node(id string) (*Node, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node, in insertion order.
func (g *Graph) Nodes() []*Node {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// IDs returns every node id, in insertion order.
func (g *Graph) IDs() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return append([]string(nil), g.order...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return len(g.order)
}

// Dependencies returns the ids id depends on. Unknown ids yield an empty slice.
func (g *Graph) Dependencies(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return []string{}
	}
	return append([]string{}, n.depOrder...)
}

// DetectCycles checks the graph for any cycles. It returns a configuration
// error naming the cycle's path if one is found.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// visited: nodes fully explored and known not to be on a cycle.
	// onPath: nodes on the current recursion path.
	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	var path []string

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if onPath[n.id] {
			return config.Invalidf("cycle detected: %s", cyclePath(path, n.id))
		}
		if visited[n.id] {
			return nil
		}

		onPath[n.id] = true
		path = append(path, n.id)

		for _, depID := range n.depOrder {
			if err := visit(n.deps[depID]); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		delete(onPath, n.id)
		visited[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

// cyclePath renders the tail of path starting at id, closed back onto id.
func cyclePath(path []string, id string) string {
	start := 0
	for i, p := range path {
		if p == id {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, path[start:]...), id)
	return strings.Join(cycle, " -> ")
}
