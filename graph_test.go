package ticketflow

import (
	"context"
	"errors"
	"testing"
)

func passNode(ctx context.Context, state State) (State, error) {
	return state, nil
}

func passMerge(base, branch State) State {
	return base
}

func TestGraph_Compile(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", passNode)
	g.AddNode("b", passNode)
	g.SetEntry("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", END)

	if _, err := g.Compile(); err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
}

func TestGraph_CompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Graph
	}{
		{"no entry", func() *Graph {
			g := NewGraph()
			g.AddNode("a", passNode)
			g.AddEdge("a", END)
			return g
		}},
		{"unknown entry", func() *Graph {
			g := NewGraph()
			g.AddNode("a", passNode)
			g.AddEdge("a", END)
			g.SetEntry("missing")
			return g
		}},
		{"edge to unknown node", func() *Graph {
			g := NewGraph()
			g.AddNode("a", passNode)
			g.SetEntry("a")
			g.AddEdge("a", "missing")
			return g
		}},
		{"node without successor", func() *Graph {
			g := NewGraph()
			g.AddNode("a", passNode)
			g.SetEntry("a")
			return g
		}},
		{"duplicate node", func() *Graph {
			g := NewGraph()
			g.AddNode("a", passNode)
			g.AddNode("a", passNode)
			g.SetEntry("a")
			g.AddEdge("a", END)
			return g
		}},
		{"edge and router on same node", func() *Graph {
			g := NewGraph()
			g.AddNode("a", passNode)
			g.SetEntry("a")
			g.AddEdge("a", END)
			g.AddConditionalEdge("a", func(State) string { return END })
			return g
		}},
		{"parallel group without branches", func() *Graph {
			g := NewGraph()
			g.AddParallel("group")
			g.SetEntry("group")
			g.AddEdge("group", END)
			return g
		}},
		{"branch without merge", func() *Graph {
			g := NewGraph()
			g.AddParallel("group", Branch{Name: "x", Run: passNode})
			g.SetEntry("group")
			g.AddEdge("group", END)
			return g
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Compile()
			if !errors.Is(err, ErrGraphInvalid) {
				t.Errorf("Compile() = %v, want ErrGraphInvalid", err)
			}
		})
	}
}

func TestGraph_RouterToUnknownNode(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", passNode)
	g.SetEntry("a")
	g.AddConditionalEdge("a", func(State) string { return "missing" })

	cg, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	// Router targets are only checkable at runtime.
	engine := NewEngine(cg, EngineConfig{})
	_, err = engine.Execute(context.Background(), NewState("t", Input{Text: "x"}))
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Execute() = %v, want ErrUnknownNode", err)
	}
}

func TestBuildTicketGraph(t *testing.T) {
	cg, err := BuildTicketGraph(DefaultNodeConfig())
	if err != nil {
		t.Fatalf("BuildTicketGraph() error: %v", err)
	}
	if cg.Entry() != NodeIntake {
		t.Errorf("Entry() = %q, want %q", cg.Entry(), NodeIntake)
	}
}
