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

// extractOutput is the extract node's structured-output contract.
type extractOutput struct {
	Actions []struct {
		Kind     string `json:"kind"`
		Title    string `json:"title"`
		Assignee string `json:"assignee"`
		Citation string `json:"citation"`
	} `json:"actions"`
	Decisions []struct {
		Title    string `json:"title"`
		Citation string `json:"citation"`
	} `json:"decisions"`
}

// ExtractNode pulls action items and decisions out of the input. Every
// item must cite source text; uncited items are dropped, never invented.
// Empty result lists are a valid outcome.
func ExtractNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		if err := state.Validate(RequireInput); err != nil {
			return state, err
		}
		if state.Aborted() {
			return state, nil
		}

		system, err := systemPrompt(ctx, "extract")
		if err != nil {
			return state, err
		}

		var out extractOutput
		iv := MustInvokerFromContext(ctx)
		_, err = iv.Structured(ctx, llm.TaskExtract, system, formatExtractInput(state), &out)
		if errors.Is(err, budget.ErrExceeded) {
			state.Abort(AbortBudgetExceeded)
			return state, nil
		}
		if err != nil {
			return state, fmt.Errorf("extract: %w", err)
		}

		state.Actions = state.Actions[:0]
		for _, a := range out.Actions {
			if strings.TrimSpace(a.Citation) == "" || strings.TrimSpace(a.Title) == "" {
				slog.Debug("dropping uncited action", "runId", state.RunID, "title", a.Title)
				continue
			}
			state.Actions = append(state.Actions, ActionItem{
				Kind:     normalizeActionKind(a.Kind),
				Title:    a.Title,
				Assignee: a.Assignee,
				Citation: a.Citation,
			})
		}

		state.Decisions = state.Decisions[:0]
		for _, d := range out.Decisions {
			if strings.TrimSpace(d.Citation) == "" || strings.TrimSpace(d.Title) == "" {
				slog.Debug("dropping uncited decision", "runId", state.RunID, "title", d.Title)
				continue
			}
			state.Decisions = append(state.Decisions, Decision{
				Title:    d.Title,
				Citation: d.Citation,
			})
		}
		return state, nil
	}
}

func normalizeActionKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "bug":
		return "bug"
	case "followup", "follow-up", "follow_up":
		return "followup"
	default:
		return "task"
	}
}
