package ticketflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/ticketflow/budget"
	"github.com/randalmurphal/ticketflow/llm"
)

// SynthesizeNode merges the available reviews and detected conflicts into
// a candidate canonical draft, replacing any prior draft outright. A
// budget refusal degrades the run instead of failing it; the draft node
// still produces a best-effort result downstream.
func SynthesizeNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		system, err := systemPrompt(ctx, "synthesize")
		if err != nil {
			return state, err
		}

		var draft Draft
		iv := MustInvokerFromContext(ctx)
		_, err = iv.Structured(ctx, llm.TaskSynthesize, system, formatSynthesizeInput(state), &draft)
		if errors.Is(err, budget.ErrExceeded) {
			state.Abort(AbortBudgetExceeded)
			return state, nil
		}
		if err != nil {
			return state, fmt.Errorf("synthesize: %w", err)
		}

		state.Draft = &draft
		return state, nil
	}
}
