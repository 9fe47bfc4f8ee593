package ticketflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/ticketflow/tracker"
)

// CommitNode files the approved draft with the external tracker. The
// commit result is recorded exactly once per run. Validation failures and
// tracker errors are captured as data, never re-raised: a failed commit
// is terminal but recoverable, and the tracker's content-hash dedup makes
// re-submission safe.
func CommitNode(cfg NodeConfig) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		if state.Commit != nil {
			return state, nil
		}
		if err := state.Validate(RequireApproval); err != nil {
			return state, err
		}

		if err := state.Draft.Validate(); err != nil {
			state.Commit = &CommitResult{Error: fmt.Sprintf("DRAFT_INVALID: %v", err)}
			slog.Warn("commit refused invalid draft", "runId", state.RunID, "error", err)
			return state, nil
		}

		tc := TrackerFromContext(ctx)
		if tc == nil {
			state.Commit = &CommitResult{Error: "tracker not configured"}
			return state, nil
		}

		issue := tracker.Issue{
			Project:     cfg.Project,
			Type:        cfg.IssueType,
			Summary:     state.Draft.Summary,
			Description: state.Draft.DescriptionMd,
			Priority:    state.Draft.Priority,
			Labels:      state.Draft.Labels,
			Components:  state.Draft.Components,
		}

		cctx, cancel := context.WithTimeout(ctx, cfg.CommitTimeout)
		defer cancel()
		created, err := tc.CreateIssue(cctx, issue)
		if err != nil {
			state.Commit = &CommitResult{Error: err.Error()}
			slog.Error("ticket creation failed", "runId", state.RunID, "error", err)
			return state, nil
		}

		state.Commit = &CommitResult{IssueKey: created.Key, URL: created.URL}
		slog.Info("ticket committed",
			"runId", state.RunID, "issueKey", created.Key, "existing", created.Existing)
		return state, nil
	}
}
