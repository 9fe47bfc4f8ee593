package ticketflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/ticketflow/budget"
	"github.com/randalmurphal/ticketflow/llm"
)

// classifyOutput is the classify node's structured-output contract.
type classifyOutput struct {
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// Validate implements llm.Validator.
func (o *classifyOutput) Validate() error {
	switch Intent(o.Intent) {
	case IntentDecision, IntentActionItem, IntentDiscussion, IntentQuestion:
	default:
		return fmt.Errorf("unknown intent %q", o.Intent)
	}
	if o.Confidence < 0 || o.Confidence > 1 {
		return fmt.Errorf("confidence %.2f out of range", o.Confidence)
	}
	return nil
}

// ClassifyNode classifies the input's intent with a single cheap model
// call. Evidence spans are kept only when they actually occur verbatim in
// the input; the model must not infer evidence the text does not contain.
func ClassifyNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		if err := state.Validate(RequireInput); err != nil {
			return state, err
		}

		system, err := systemPrompt(ctx, "classify")
		if err != nil {
			return state, err
		}

		var out classifyOutput
		iv := MustInvokerFromContext(ctx)
		_, err = iv.Structured(ctx, llm.TaskClassify, system, formatClassifyInput(state), &out)
		if errors.Is(err, budget.ErrExceeded) {
			state.Abort(AbortBudgetExceeded)
			return state, nil
		}
		if err != nil {
			return state, fmt.Errorf("classify: %w", err)
		}

		evidence := make([]string, 0, len(out.Evidence))
		for _, span := range out.Evidence {
			if strings.Contains(state.Input.Text, span) {
				evidence = append(evidence, span)
			} else {
				slog.Debug("dropping fabricated evidence span", "runId", state.RunID, "span", span)
			}
		}

		state.Classification = &Classification{
			Intent:     Intent(out.Intent),
			Confidence: out.Confidence,
			Evidence:   evidence,
		}
		return state, nil
	}
}
