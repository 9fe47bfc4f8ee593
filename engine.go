package ticketflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultMaxSteps is the default step ceiling for a run. The ceiling bounds
// cost on any latent cycle in conditional routing.
const DefaultMaxSteps = 25

// EngineConfig configures the execution engine.
type EngineConfig struct {
	// MaxSteps is the step ceiling applied to runs that do not carry their
	// own. Defaults to DefaultMaxSteps.
	MaxSteps int

	// Checkpoints receives a state snapshot after every completed node.
	// Optional; without it runs cannot be resumed.
	Checkpoints CheckpointStore

	// OnSnapshot, if set, is invoked after every completed node with the
	// current state. The Runner uses this for its streaming feed.
	OnSnapshot func(State)
}

// Engine executes a compiled graph to completion, abort, or suspension.
type Engine struct {
	graph *CompiledGraph
	cfg   EngineConfig
}

// NewEngine creates an engine for the given graph.
func NewEngine(graph *CompiledGraph, cfg EngineConfig) *Engine {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	return &Engine{graph: graph, cfg: cfg}
}

// Execute runs the graph from the state's cursor (or the entry node for a
// fresh state) until END, suspension, or failure.
//
// Returns ErrAwaitingApproval when a router yields Wait: the state is
// checkpointed with the suspended node as cursor and resumption re-executes
// that node. Node errors mark the state failed and are returned as-is.
// Cancellation is observed between node boundaries only; an in-flight node
// is allowed to finish.
func (e *Engine) Execute(ctx context.Context, state State) (State, error) {
	node := state.Control.Node
	if node == "" {
		node = e.graph.Entry()
	}
	if state.Control.MaxSteps <= 0 {
		state.Control.MaxSteps = e.cfg.MaxSteps
	}

	for node != END {
		if err := ctx.Err(); err != nil {
			state.Control.Node = node
			e.checkpoint(ctx, state)
			return state, err
		}
		if state.Control.Step >= state.Control.MaxSteps {
			err := fmt.Errorf("%w: %d steps at node %q", ErrRecursionLimit, state.Control.Step, node)
			state.SetError(err)
			e.checkpoint(ctx, state)
			e.snapshot(state)
			return state, err
		}

		start := time.Now()
		next, err := e.step(ctx, node, &state)
		slog.Debug("node executed",
			"runId", state.RunID, "node", node, "duration", time.Since(start),
			"step", state.Control.Step, "err", err)
		if err != nil {
			state.Control.Node = node
			state.SetError(err)
			e.checkpoint(ctx, state)
			e.snapshot(state)
			return state, err
		}

		if next == Wait {
			// Suspend: keep the cursor on this node so resumption
			// re-executes it once the external decision lands.
			state.Control.Node = node
			e.checkpoint(ctx, state)
			e.snapshot(state)
			return state, ErrAwaitingApproval
		}

		state.Control.Node = next
		e.checkpoint(ctx, state)
		e.snapshot(state)
		node = next
	}

	return state, nil
}

// step executes one node or parallel group and resolves its successor.
func (e *Engine) step(ctx context.Context, node string, state *State) (string, error) {
	if branches, ok := e.graph.graph.groups[node]; ok {
		if err := e.runParallel(ctx, branches, state); err != nil {
			return "", err
		}
	} else {
		fn, ok := e.graph.graph.nodes[node]
		if !ok {
			return "", fmt.Errorf("%q: %w", node, ErrUnknownNode)
		}
		updated, err := fn(ctx, *state)
		state.Control.Step++
		// Restoring Control must not wipe an abort the node just latched.
		reason := updated.Control.AbortReason
		updated.Control = state.Control
		if reason != "" {
			updated.Abort(reason)
		}
		if err != nil {
			return "", fmt.Errorf("node %s: %w", node, err)
		}
		*state = updated
	}
	return e.graph.next(node, *state)
}

// runParallel fans branches out on copies of the state and folds results
// back with each branch's merge. Branches own disjoint fields, so merge
// order only matters for determinism, not correctness.
func (e *Engine) runParallel(ctx context.Context, branches []Branch, state *State) error {
	results := make([]State, len(branches))
	errs := make([]error, len(branches))

	var wg sync.WaitGroup
	for i, b := range branches {
		wg.Add(1)
		go func(i int, b Branch) {
			defer wg.Done()
			results[i], errs[i] = b.Run(ctx, *state)
		}(i, b)
	}
	wg.Wait()

	state.Control.Step += len(branches)
	for i, b := range branches {
		if errs[i] != nil {
			return fmt.Errorf("node %s: %w", b.Name, errs[i])
		}
		merged := b.Merge(*state, results[i])
		merged.Control = state.Control
		// Abort latches set inside a branch survive the fan-in.
		if reason := results[i].Control.AbortReason; reason != "" {
			merged.Abort(reason)
		}
		*state = merged
	}
	return nil
}

func (e *Engine) checkpoint(ctx context.Context, state State) {
	if e.cfg.Checkpoints == nil {
		return
	}
	// Checkpoint writes must survive caller cancellation.
	if err := e.cfg.Checkpoints.SaveCheckpoint(context.WithoutCancel(ctx), state.RunID, state); err != nil {
		slog.Warn("checkpoint save failed", "runId", state.RunID, "error", err)
	}
}

func (e *Engine) snapshot(state State) {
	if e.cfg.OnSnapshot != nil {
		e.cfg.OnSnapshot(state)
	}
}
