package ticketflow

import (
	"context"
	"fmt"
	"log/slog"
)

// ApprovalNode is the human suspension point. It makes no model call: it
// reads the externally-recorded decision for this run and passes it
// through. With no decision yet the state is left untouched and the
// router suspends the run; resumption re-executes this node.
func ApprovalNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		if err := state.Validate(RequireDraft); err != nil {
			return state, err
		}

		src := ApprovalsFromContext(ctx)
		if src == nil {
			// No approval channel wired; the run waits forever otherwise.
			return state, fmt.Errorf("approval source not configured")
		}

		dec, err := src.Decision(ctx, state.RunID)
		if err != nil {
			return state, fmt.Errorf("approval lookup: %w", err)
		}
		if dec == nil {
			slog.Info("run awaiting approval", "runId", state.RunID)
			return state, nil
		}

		approved := dec.Approved
		state.Approved = &approved
		slog.Info("approval decision applied",
			"runId", state.RunID, "approved", approved, "decidedBy", dec.DecidedBy)
		return state, nil
	}
}

// ApprovalRouter suspends until a decision lands, then routes approved
// runs to commit and rejected runs to termination.
func ApprovalRouter(state State) string {
	switch {
	case state.Approved == nil:
		return Wait
	case *state.Approved:
		return NodeCommit
	default:
		return END
	}
}
