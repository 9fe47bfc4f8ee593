package ticketflow

import (
	"context"
	"fmt"
)

// Terminal and suspension sentinels returned by routers.
const (
	// END terminates the run.
	END = "__end__"

	// Wait suspends the run at the current node. The engine checkpoints
	// the state with the current node as cursor and returns
	// ErrAwaitingApproval; resumption re-executes that node.
	Wait = "__wait__"
)

// NodeFunc is a unit of work in the graph: it receives the full state and
// returns the updated state. Nodes write only the fields they own.
type NodeFunc func(ctx context.Context, state State) (State, error)

// RouterFunc inspects the state after a node completes and names the next
// node, END, or Wait. Routers must be pure functions over the state.
type RouterFunc func(state State) string

// MergeFunc folds one parallel branch's result into the base state.
// Branches own disjoint fields, so merges copy only the owned fields.
type MergeFunc func(base, branch State) State

// Branch is one member of a parallel group.
type Branch struct {
	Name  string
	Run   NodeFunc
	Merge MergeFunc
}

// Graph builds a fixed workflow topology. The zero value is not usable;
// create one with NewGraph.
type Graph struct {
	nodes    map[string]NodeFunc
	groups   map[string][]Branch
	edges    map[string]string
	routers  map[string]RouterFunc
	order    []string
	entry    string
	buildErr error
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]NodeFunc),
		groups:  make(map[string][]Branch),
		edges:   make(map[string]string),
		routers: make(map[string]RouterFunc),
	}
}

// AddNode registers a sequential node under the given name.
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	if g.exists(name) {
		g.fail("duplicate node %q", name)
		return g
	}
	g.nodes[name] = fn
	g.order = append(g.order, name)
	return g
}

// AddParallel registers a named fan-out/fan-in group. Every branch runs
// concurrently on a copy of the state; branch merges are applied to the
// base state after all branches complete.
func (g *Graph) AddParallel(name string, branches ...Branch) *Graph {
	if g.exists(name) {
		g.fail("duplicate node %q", name)
		return g
	}
	if len(branches) == 0 {
		g.fail("parallel group %q has no branches", name)
		return g
	}
	for _, b := range branches {
		if b.Run == nil || b.Merge == nil {
			g.fail("parallel branch %q/%q needs Run and Merge", name, b.Name)
			return g
		}
	}
	g.groups[name] = branches
	g.order = append(g.order, name)
	return g
}

// AddEdge declares an unconditional edge.
func (g *Graph) AddEdge(from, to string) *Graph {
	if _, dup := g.edges[from]; dup {
		g.fail("node %q already has an edge", from)
		return g
	}
	if _, dup := g.routers[from]; dup {
		g.fail("node %q already has a router", from)
		return g
	}
	g.edges[from] = to
	return g
}

// AddConditionalEdge declares a router that picks the successor at runtime.
func (g *Graph) AddConditionalEdge(from string, router RouterFunc) *Graph {
	if _, dup := g.edges[from]; dup {
		g.fail("node %q already has an edge", from)
		return g
	}
	if _, dup := g.routers[from]; dup {
		g.fail("node %q already has a router", from)
		return g
	}
	g.routers[from] = router
	return g
}

// SetEntry names the node execution starts from.
func (g *Graph) SetEntry(name string) *Graph {
	g.entry = name
	return g
}

// Compile validates the topology and returns an executable graph.
func (g *Graph) Compile() (*CompiledGraph, error) {
	if g.buildErr != nil {
		return nil, g.buildErr
	}
	if g.entry == "" {
		return nil, fmt.Errorf("%w: no entry node", ErrGraphInvalid)
	}
	if !g.exists(g.entry) {
		return nil, fmt.Errorf("%w: entry %q: %v", ErrGraphInvalid, g.entry, ErrUnknownNode)
	}
	for from, to := range g.edges {
		if !g.exists(from) {
			return nil, fmt.Errorf("%w: edge from %q: %v", ErrGraphInvalid, from, ErrUnknownNode)
		}
		if to != END && !g.exists(to) {
			return nil, fmt.Errorf("%w: edge %q -> %q: %v", ErrGraphInvalid, from, to, ErrUnknownNode)
		}
	}
	for from := range g.routers {
		if !g.exists(from) {
			return nil, fmt.Errorf("%w: router on %q: %v", ErrGraphInvalid, from, ErrUnknownNode)
		}
	}
	for _, name := range g.order {
		_, hasEdge := g.edges[name]
		_, hasRouter := g.routers[name]
		if !hasEdge && !hasRouter {
			return nil, fmt.Errorf("%w: node %q has no outgoing edge", ErrGraphInvalid, name)
		}
	}
	return &CompiledGraph{graph: g}, nil
}

// CompiledGraph is a validated, executable topology.
type CompiledGraph struct {
	graph *Graph
}

// Entry returns the entry node name.
func (cg *CompiledGraph) Entry() string {
	return cg.graph.entry
}

// next resolves the successor of the given node for the given state.
func (cg *CompiledGraph) next(name string, state State) (string, error) {
	if to, ok := cg.graph.edges[name]; ok {
		return to, nil
	}
	if router, ok := cg.graph.routers[name]; ok {
		to := router(state)
		if to != END && to != Wait && !cg.graph.exists(to) {
			return "", fmt.Errorf("router on %q returned %q: %w", name, to, ErrUnknownNode)
		}
		return to, nil
	}
	return "", fmt.Errorf("node %q has no successor: %w", name, ErrGraphInvalid)
}

func (g *Graph) exists(name string) bool {
	if _, ok := g.nodes[name]; ok {
		return true
	}
	_, ok := g.groups[name]
	return ok
}

func (g *Graph) fail(format string, args ...any) {
	if g.buildErr == nil {
		g.buildErr = fmt.Errorf("%w: %s", ErrGraphInvalid, fmt.Sprintf(format, args...))
	}
}
