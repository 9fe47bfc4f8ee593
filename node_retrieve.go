package ticketflow

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/ticketflow/retrieval"
)

// RetrieveContextNode searches stored context chunks for material related
// to the input. A missing or failing retriever yields an empty list, not a
// run failure; the context gate decides what insufficient grounding means.
func RetrieveContextNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		state.RetrievedContext = []ContextEntry{}

		retriever := RetrieverFromContext(ctx)
		if retriever == nil {
			slog.Debug("no retriever configured", "runId", state.RunID)
			return state, nil
		}

		results, err := retriever.Search(ctx, state.Input.Text, retrieval.SearchOptions{
			Limit:         cfg.RetrieveLimit,
			MinSimilarity: cfg.MinSimilarity,
		})
		if err != nil {
			slog.Warn("context retrieval unavailable",
				"runId", state.RunID, "error", err)
			return state, nil
		}

		for _, r := range results {
			state.RetrievedContext = append(state.RetrievedContext, ContextEntry{
				Content:    r.Content,
				Similarity: r.Similarity,
				SourceID:   r.SourceID,
			})
		}
		return state, nil
	}
}
