package ticketflow

import "context"

// designConstraintLimit is the constraint count above which an approving
// business review conflicts with the design review.
const designConstraintLimit = 3

// ConflictDetectNode evaluates deterministic disagreement rules over the
// reviewer verdicts. No model call. Absent review slots never fire a rule;
// either, both, or neither rule may fire on one run.
func ConflictDetectNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		biz := state.Reviews.Biz

		if biz != nil && state.Reviews.QA != nil &&
			biz.Recommendation == VerdictReject && len(state.Reviews.QA.Risks) == 0 {
			state.Conflicts = append(state.Conflicts, Conflict{
				Between: [2]string{"biz", "qa"},
				Topic:   "business rejects but QA found no risks",
				ResolutionProposal: "have business name the blocking risk so QA can assess it, " +
					"or downgrade the rejection",
			})
		}

		if biz != nil && state.Reviews.Design != nil &&
			biz.Recommendation == VerdictApprove &&
			len(state.Reviews.Design.Constraints) > designConstraintLimit {
			state.Conflicts = append(state.Conflicts, Conflict{
				Between: [2]string{"biz", "design"},
				Topic:   "business approves but design has many constraints",
				ResolutionProposal: "scope the ticket against the design constraints before " +
					"committing to the approved timeline",
			})
		}

		return state, nil
	}
}
