package ticketflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/ticketflow/llm"
)

// enrichOutput is the enrichment call's structured-output contract. The
// existing draft is preserved; only these two fields may change.
type enrichOutput struct {
	Summary       string   `json:"summary"`
	OpenQuestions []string `json:"openQuestions"`
}

// DraftNode guarantees every run ends up with a draft. When synthesis
// already produced a canonical draft, a light enrichment call sharpens the
// summary and collects open questions, preserving the draft body. When no
// draft exists (the gate skipped the review path) it generates one
// directly from classification, extracted items, and retrieved context,
// falling back to a mechanical draft when the model is out of reach.
func DraftNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		if state.Draft != nil && state.Draft.Canonical() {
			return enrichDraft(ctx, state)
		}
		return generateDraft(ctx, state)
	}
}

func enrichDraft(ctx context.Context, state State) (State, error) {
	system, err := systemPrompt(ctx, "enrich")
	if err != nil {
		return state, err
	}

	var out enrichOutput
	iv := MustInvokerFromContext(ctx)
	_, err = iv.Structured(ctx, llm.TaskEnrich, system, formatEnrichInput(state), &out)
	if err != nil {
		// The draft is already canonical; enrichment is best-effort.
		slog.Warn("draft enrichment skipped", "runId", state.RunID, "error", err)
		return state, nil
	}

	if s := strings.TrimSpace(out.Summary); s != "" && len(s) <= 255 {
		state.Draft.Summary = s
	}
	if len(out.OpenQuestions) > 0 {
		state.Draft.OpenQuestions = out.OpenQuestions
	}
	return state, nil
}

func generateDraft(ctx context.Context, state State) (State, error) {
	// A budget abort means no further model spend; go straight to the
	// mechanical fallback instead of burning a refused call.
	if state.Control.AbortReason != AbortBudgetExceeded {
		system, err := systemPrompt(ctx, "draft")
		if err != nil {
			return state, err
		}

		var draft Draft
		iv := MustInvokerFromContext(ctx)
		_, err = iv.Structured(ctx, llm.TaskDraft, system, formatDraftInput(state), &draft)
		if err == nil && draft.Canonical() {
			state.Draft = &draft
			return state, nil
		}
		slog.Warn("draft generation fell back to mechanical draft",
			"runId", state.RunID, "error", err)
	}

	state.Draft = mechanicalDraft(state)
	return state, nil
}

// mechanicalDraft assembles a minimal canonical draft without a model
// call. Deliberately plain: it exists so a degraded run still has
// something a human can approve or reject.
func mechanicalDraft(state State) *Draft {
	summary := firstLine(state.Input.Text)
	if len(state.Decisions) > 0 {
		summary = state.Decisions[0].Title
	} else if len(state.Actions) > 0 {
		summary = state.Actions[0].Title
	}
	if summary == "" {
		summary = "Untitled ticket"
	}
	if len(summary) > 255 {
		summary = summary[:255]
	}

	var desc strings.Builder
	desc.WriteString("## Source\n\n")
	desc.WriteString(state.Input.Text)
	desc.WriteString("\n")
	if len(state.Actions) > 0 {
		desc.WriteString("\n## Action items\n\n")
		for _, a := range state.Actions {
			fmt.Fprintf(&desc, "- [%s] %s\n", a.Kind, a.Title)
		}
	}
	if len(state.Decisions) > 0 {
		desc.WriteString("\n## Decisions\n\n")
		for _, d := range state.Decisions {
			fmt.Fprintf(&desc, "- %s\n", d.Title)
		}
	}
	if state.Control.AbortReason != "" {
		fmt.Fprintf(&desc, "\n## Note\n\nDrafted without specialist review (%s).\n",
			state.Control.AbortReason)
	}

	var citations []string
	for _, a := range state.Actions {
		citations = append(citations, a.Citation)
	}
	for _, d := range state.Decisions {
		citations = append(citations, d.Citation)
	}

	return &Draft{
		Summary:       summary,
		DescriptionMd: desc.String(),
		Priority:      "Medium",
		Labels:        []string{"ticketflow", "needs-review"},
		Citations:     citations,
		OpenQuestions: []string{"Draft produced without specialist review; confirm scope and priority."},
	}
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
