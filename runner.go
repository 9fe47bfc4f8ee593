package ticketflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/ticketflow/decision"
	"github.com/randalmurphal/ticketflow/notify"
)

// Runner drives runs through the compiled graph and reports lifecycle
// events. It is safe for concurrent use; each run executes independently.
type Runner struct {
	engine      *Engine
	checkpoints CheckpointStore
	filter      *decision.Config

	mu       sync.Mutex
	watchers map[string][]chan State
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithDecisionFilter screens chat input through the decision heuristic
// before a run starts. Messages scoring below the threshold are dropped
// without spending a model call; manual and meeting input is never
// screened.
func WithDecisionFilter(cfg decision.Config) RunnerOption {
	return func(r *Runner) { r.filter = &cfg }
}

// NewRunner creates a runner over the given graph. Checkpoints may be nil,
// in which case runs cannot suspend for approval or be resumed.
func NewRunner(graph *CompiledGraph, checkpoints CheckpointStore, opts ...RunnerOption) *Runner {
	r := &Runner{
		checkpoints: checkpoints,
		watchers:    make(map[string][]chan State),
	}
	r.engine = NewEngine(graph, EngineConfig{
		Checkpoints: checkpoints,
		OnSnapshot:  r.broadcast,
	})
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a fresh run to completion, suspension, or failure. The
// returned state reflects the last completed node; ErrAwaitingApproval
// means the run is parked at the approval node, not failed.
func (r *Runner) Run(ctx context.Context, flowID string, input Input) (State, error) {
	state := NewState(flowID, input)
	if det, ok := r.screen(input); !ok {
		slog.Info("chat input screened out",
			"flowId", flowID, "confidence", det.Confidence, "signals", det.Signals)
		return state, fmt.Errorf("%w: confidence %.2f", ErrNotActionable, det.Confidence)
	}
	r.emit(ctx, state, notify.EventRunStarted, notify.SeverityInfo,
		fmt.Sprintf("run started from %s input", input.Kind), nil)
	return r.execute(ctx, state)
}

// StartRun launches a run in the background and returns its ID
// immediately. Progress is observable through Watch and GetRunState. The
// run outlives the caller's context. Returns an empty ID when the
// decision filter screens the input out.
func (r *Runner) StartRun(ctx context.Context, flowID string, input Input) string {
	state := NewState(flowID, input)
	runID := state.RunID
	if det, ok := r.screen(input); !ok {
		slog.Info("chat input screened out",
			"flowId", flowID, "confidence", det.Confidence, "signals", det.Signals)
		return ""
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		r.emit(bg, state, notify.EventRunStarted, notify.SeverityInfo,
			fmt.Sprintf("run started from %s input", input.Kind), nil)
		if _, err := r.execute(bg, state); err != nil && !errors.Is(err, ErrAwaitingApproval) {
			slog.Error("background run failed", "runId", runID, "error", err)
		}
	}()
	return runID
}

// screen applies the decision heuristic to chat input. Everything else
// passes untouched.
func (r *Runner) screen(input Input) (decision.Detection, bool) {
	if r.filter == nil || input.Kind != InputChat {
		return decision.Detection{}, true
	}
	det := r.filter.Detect(input.Text, input.Reactions, input.ThreadUserCount)
	return det, det.IsDecision
}

// ResumeRun reloads a checkpointed run and continues it from its cursor.
// The usual caller is the approval webhook: a decision lands, then the
// run is resumed and re-executes the approval node.
func (r *Runner) ResumeRun(ctx context.Context, runID string) (State, error) {
	if r.checkpoints == nil {
		return State{}, ErrNoCheckpoint
	}
	snap, err := r.checkpoints.LoadCheckpoint(ctx, runID)
	if err != nil {
		return State{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if snap == nil {
		return State{}, fmt.Errorf("%w: %s", ErrNoCheckpoint, runID)
	}
	if snap.Terminal() {
		return *snap, nil
	}
	return r.execute(ctx, *snap)
}

// GetRunState returns the last checkpointed state for a run.
func (r *Runner) GetRunState(ctx context.Context, runID string) (*State, error) {
	if r.checkpoints == nil {
		return nil, ErrRunNotFound
	}
	snap, err := r.checkpoints.LoadCheckpoint(ctx, runID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return snap, nil
}

// Watch returns a channel that receives a snapshot after every completed
// node of the given run, plus a cancel function that unsubscribes and
// closes the channel. The channel also closes on its own once a terminal
// snapshot is delivered. Slow consumers miss intermediate snapshots
// rather than blocking the run.
func (r *Runner) Watch(runID string) (<-chan State, func()) {
	ch := make(chan State, 8)
	r.mu.Lock()
	r.watchers[runID] = append(r.watchers[runID], ch)
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		subs := r.watchers[runID]
		for i, sub := range subs {
			if sub == ch {
				r.watchers[runID] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
		if len(r.watchers[runID]) == 0 {
			delete(r.watchers, runID)
		}
	}
	return ch, cancel
}

// execute runs the engine and translates the outcome into lifecycle
// events.
func (r *Runner) execute(ctx context.Context, state State) (State, error) {
	final, err := r.engine.Execute(ctx, state)

	if final.Aborted() {
		r.emitDegradation(ctx, final)
	}

	switch {
	case errors.Is(err, ErrAwaitingApproval):
		r.emit(ctx, final, notify.EventApprovalNeeded, notify.SeverityInfo,
			"draft ready, awaiting human approval", map[string]any{
				"summary": draftSummary(final),
			})
	case err != nil:
		r.emit(ctx, final, notify.EventRunFailed, notify.SeverityError,
			err.Error(), nil)
	case final.Commit != nil && final.Commit.Error != "":
		r.emit(ctx, final, notify.EventRunFailed, notify.SeverityError,
			"commit failed: "+final.Commit.Error, nil)
	case final.Commit != nil:
		r.emit(ctx, final, notify.EventRunCommitted, notify.SeverityInfo,
			"ticket committed: "+final.Commit.IssueKey, map[string]any{
				"issueKey": final.Commit.IssueKey,
				"url":      final.Commit.URL,
			})
	case final.Approved != nil && !*final.Approved:
		r.emit(ctx, final, notify.EventRunRejected, notify.SeverityWarning,
			"draft rejected", nil)
	}
	return final, err
}

// emitDegradation distinguishes a budget abort from an insufficient
// context abort so consumers can react differently.
func (r *Runner) emitDegradation(ctx context.Context, state State) {
	if state.Control.AbortReason == AbortBudgetExceeded {
		r.emit(ctx, state, notify.EventBudgetExceeded, notify.SeverityWarning,
			"run degraded: daily budget exceeded", nil)
		return
	}
	r.emit(ctx, state, notify.EventRunDegraded, notify.SeverityWarning,
		"run degraded: "+state.Control.AbortReason, nil)
}

func (r *Runner) emit(ctx context.Context, state State, typ notify.EventType, severity, msg string, metadata map[string]any) {
	n := notify.NotifierFromContext(ctx)
	if n == nil {
		return
	}
	err := n.Notify(ctx, notify.Event{
		Type:      typ,
		RunID:     state.RunID,
		FlowID:    state.FlowID,
		Message:   msg,
		Severity:  severity,
		Timestamp: time.Now(),
		Metadata:  metadata,
	})
	if err != nil {
		slog.Warn("notification failed", "runId", state.RunID, "event", typ, "error", err)
	}
}

func (r *Runner) broadcast(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := r.watchers[state.RunID]
	for _, ch := range subs {
		select {
		case ch <- state:
		default:
		}
	}
	// The feed ends with the terminal snapshot; leaving channels open
	// would strand subscribers that never cancel.
	if state.Terminal() {
		for _, ch := range subs {
			close(ch)
		}
		delete(r.watchers, state.RunID)
	}
}

func draftSummary(state State) string {
	if state.Draft == nil {
		return ""
	}
	return state.Draft.Summary
}
