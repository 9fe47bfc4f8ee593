package ticketflow

import (
	"context"
	"log/slog"
)

// ContextGateNode is a pure guard with no model call. It latches
// context_insufficient when too little grounding was retrieved for an
// untrusted input kind, and budget_exceeded when today's spend crossed the
// ceiling. Either condition alone aborts; manual input is trusted without
// grounding. Aborting degrades the run, it does not stop the graph.
func ContextGateNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		if len(state.RetrievedContext) < cfg.ContextFloor && state.Input.Kind != InputManual {
			state.Abort(AbortContextInsufficient)
			slog.Info("context gate aborting run",
				"runId", state.RunID,
				"reason", AbortContextInsufficient,
				"retrieved", len(state.RetrievedContext),
				"floor", cfg.ContextFloor)
		}

		if ledger := LedgerFromContext(ctx); ledger != nil {
			over, err := ledger.OverBudget(ctx)
			if err != nil {
				slog.Warn("budget check failed at gate, allowing run",
					"runId", state.RunID, "error", err)
			} else if over {
				state.Abort(AbortBudgetExceeded)
				slog.Info("context gate aborting run",
					"runId", state.RunID, "reason", AbortBudgetExceeded)
			}
		}
		return state, nil
	}
}

// GateRouter skips the specialist reviews when the gate aborted, routing
// straight to best-effort draft generation.
func GateRouter(state State) string {
	if state.Aborted() {
		return NodeDraft
	}
	return NodeReviews
}
