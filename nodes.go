package ticketflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/ticketflow/decision"
)

// =============================================================================
// Node Names
// =============================================================================

// Node names as they appear in the graph topology and in checkpoints.
const (
	NodeIntake         = "intake"
	NodeClassify       = "classify"
	NodeRetrieve       = "retrieve_context"
	NodeExtract        = "extract"
	NodeContextGate    = "context_gate"
	NodeReviews        = "reviews"
	NodeBizReview      = "biz_review"
	NodeQAReview       = "qa_review"
	NodeDesignReview   = "design_review"
	NodeConflictDetect = "conflict_detect"
	NodeSynthesize     = "synthesize"
	NodeDraft          = "draft"
	NodeApproval       = "approval"
	NodeCommit         = "commit_to_jira"
)

// =============================================================================
// Node Configuration
// =============================================================================

// NodeConfig configures node behavior.
type NodeConfig struct {
	Project       string          // Tracker project key (default: "ENG")
	IssueType     string          // Tracker issue type (default: "Task")
	RetrieveLimit int             // Max retrieved context entries (default: 5)
	MinSimilarity float64         // Retrieval similarity floor (default: 0.7)
	ContextFloor  int             // Min entries before the gate aborts (default: 1)
	CommitTimeout time.Duration   // Per-commit tracker deadline (default: 15s)
	Decision      decision.Config // Decision heuristic weights and keywords
}

// DefaultNodeConfig returns the standard configuration.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Project:       "ENG",
		IssueType:     "Task",
		RetrieveLimit: 5,
		MinSimilarity: 0.7,
		ContextFloor:  1,
		CommitTimeout: 15 * time.Second,
		Decision:      decision.DefaultConfig(),
	}
}

// =============================================================================
// Node Wrappers
// =============================================================================

// WithRetry wraps a node with retry logic.
func WithRetry(node NodeFunc, maxRetries int) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		var lastErr error
		for i := 0; i < maxRetries; i++ {
			result, err := node(ctx, state)
			if err == nil {
				return result, nil
			}
			lastErr = err
		}
		return state, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
	}
}

// WithTiming wraps a node with timing metrics.
func WithTiming(node NodeFunc, nodeName string) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		start := time.Now()
		result, err := node(ctx, state)
		slog.Debug("node execution completed",
			"runId", state.RunID, "node", nodeName, "duration", time.Since(start))
		return result, err
	}
}
