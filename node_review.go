package ticketflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/ticketflow/llm"
)

// Validate implements llm.Validator for structured review output.
func (r *Review) Validate() error {
	switch r.Recommendation {
	case VerdictApprove, VerdictReject, VerdictRevise:
	default:
		return fmt.Errorf("unknown recommendation %q", r.Recommendation)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %.2f out of range", r.Confidence)
	}
	return nil
}

// runReview performs one specialist review call. Reviewer failures are
// swallowed: the slot stays nil, meaning "no opinion", and the run
// continues with the reviews that did land.
func runReview(ctx context.Context, state State, promptName, persona string) *Review {
	system, err := systemPrompt(ctx, promptName)
	if err != nil {
		slog.Warn("review prompt unavailable",
			"runId", state.RunID, "persona", persona, "error", err)
		return nil
	}

	var review Review
	iv := MustInvokerFromContext(ctx)
	_, err = iv.Structured(ctx, llm.TaskReview, system, formatReviewInput(state), &review)
	if err != nil {
		slog.Warn("review failed",
			"runId", state.RunID, "persona", persona, "error", err)
		return nil
	}
	return &review
}

// BizReviewNode reviews business risk and value.
func BizReviewNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		state.Reviews.Biz = runReview(ctx, state, "review_business", "biz")
		return state, nil
	}
}

// QAReviewNode reviews test coverage and regression risk.
func QAReviewNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		state.Reviews.QA = runReview(ctx, state, "review_qa", "qa")
		return state, nil
	}
}

// DesignReviewNode reviews UI and accessibility constraints.
func DesignReviewNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		state.Reviews.Design = runReview(ctx, state, "review_design", "design")
		return state, nil
	}
}

// Branch merges. Each reviewer owns exactly one slot of Reviews, so a
// merge copies only that slot back onto the base state.

func mergeBizReview(base, branch State) State {
	base.Reviews.Biz = branch.Reviews.Biz
	return base
}

func mergeQAReview(base, branch State) State {
	base.Reviews.QA = branch.Reviews.QA
	return base
}

func mergeDesignReview(base, branch State) State {
	base.Reviews.Design = branch.Reviews.Design
	return base
}
