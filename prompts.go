package ticketflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/randalmurphal/ticketflow/prompt"
)

// systemPrompt resolves a node's system prompt through the prompt loader,
// honoring project-level overrides before the embedded defaults.
func systemPrompt(ctx context.Context, name string) (string, error) {
	loader := PromptsFromContext(ctx)
	if loader == nil {
		loader = defaultLoader()
	}
	text, err := loader.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	return text, nil
}

var (
	fallbackLoaderOnce sync.Once
	fallbackLoader     *prompt.Loader
)

func defaultLoader() *prompt.Loader {
	fallbackLoaderOnce.Do(func() {
		fallbackLoader = prompt.NewLoader("")
	})
	return fallbackLoader
}

// =============================================================================
// User-Input Assembly
// =============================================================================
// Each node builds its user input from the state with a prompt.Builder.
// Sections are omitted when empty so cheap-model calls stay small.

func formatClassifyInput(state State) string {
	b := prompt.NewBuilder()
	b.AddSection("Source", string(state.Input.Kind))
	b.AddSection("Input", state.Input.Text)
	return b.Build()
}

func formatExtractInput(state State) string {
	b := prompt.NewBuilder()
	b.AddSection("Source", string(state.Input.Kind))
	if state.Classification != nil {
		b.AddSection("Classified intent", fmt.Sprintf("%s (confidence %.2f)",
			state.Classification.Intent, state.Classification.Confidence))
	}
	b.AddSection("Input", state.Input.Text)
	return b.Build()
}

func formatReviewInput(state State) string {
	b := prompt.NewBuilder()
	b.AddSection("Proposal source", string(state.Input.Kind))
	b.AddSection("Proposal", state.Input.Text)
	if state.Classification != nil {
		b.AddSection("Classified intent", string(state.Classification.Intent))
	}
	b.AddList("Extracted actions", actionLines(state.Actions))
	b.AddList("Extracted decisions", decisionLines(state.Decisions))
	b.AddList("Retrieved context", contextLines(state.RetrievedContext))
	return b.Build()
}

func formatSynthesizeInput(state State) string {
	b := prompt.NewBuilder()
	b.AddSection("Proposal source", string(state.Input.Kind))
	b.AddSection("Proposal", state.Input.Text)
	b.AddList("Extracted actions", actionLines(state.Actions))
	b.AddList("Extracted decisions", decisionLines(state.Decisions))
	b.AddList("Retrieved context", contextLines(state.RetrievedContext))
	addReviewSection(b, "Business review", state.Reviews.Biz)
	addReviewSection(b, "QA review", state.Reviews.QA)
	addReviewSection(b, "Design review", state.Reviews.Design)
	b.AddList("Detected conflicts", conflictLines(state.Conflicts))
	return b.Build()
}

func formatDraftInput(state State) string {
	b := prompt.NewBuilder()
	b.AddSection("Source", string(state.Input.Kind))
	b.AddSection("Input", state.Input.Text)
	if state.Classification != nil {
		b.AddSection("Classified intent", fmt.Sprintf("%s (confidence %.2f)",
			state.Classification.Intent, state.Classification.Confidence))
	}
	b.AddList("Extracted actions", actionLines(state.Actions))
	b.AddList("Extracted decisions", decisionLines(state.Decisions))
	b.AddList("Retrieved context", contextLines(state.RetrievedContext))
	if state.Control.AbortReason != "" {
		b.AddSection("Pipeline note", fmt.Sprintf(
			"specialist reviews were skipped (%s); draft from the material above only",
			state.Control.AbortReason))
	}
	return b.Build()
}

func formatEnrichInput(state State) string {
	b := prompt.NewBuilder()
	if state.Draft != nil {
		if raw, err := json.MarshalIndent(state.Draft, "", "  "); err == nil {
			b.AddSection("Canonical draft", string(raw))
		}
	}
	b.AddList("Detected conflicts", conflictLines(state.Conflicts))
	return b.Build()
}

func actionLines(actions []ActionItem) []string {
	lines := make([]string, 0, len(actions))
	for _, a := range actions {
		line := fmt.Sprintf("[%s] %s", a.Kind, a.Title)
		if a.Assignee != "" {
			line += " (assignee: " + a.Assignee + ")"
		}
		line += " | source: " + a.Citation
		lines = append(lines, line)
	}
	return lines
}

func decisionLines(decisions []Decision) []string {
	lines := make([]string, 0, len(decisions))
	for _, d := range decisions {
		lines = append(lines, fmt.Sprintf("%s | source: %s", d.Title, d.Citation))
	}
	return lines
}

func contextLines(entries []ContextEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("(%.2f, %s) %s", e.Similarity, e.SourceID, e.Content))
	}
	return lines
}

func conflictLines(conflicts []Conflict) []string {
	lines := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		lines = append(lines, fmt.Sprintf("%s vs %s: %s", c.Between[0], c.Between[1], c.Topic))
	}
	return lines
}

func addReviewSection(b *prompt.Builder, header string, r *Review) {
	if r == nil {
		return
	}
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return
	}
	b.AddSection(header, string(raw))
}
