// Package approval carries the async human gate: decisions arrive out of
// band (chat button, CLI, web form) and runs poll for them on resume.
// Single-use signed tokens let a decision link travel over untrusted
// channels.
package approval

import (
	"context"
	"time"
)

// Decision is one human verdict on a run's draft.
type Decision struct {
	RunID     string    `json:"runId"`
	Approved  bool      `json:"approved"`
	Comment   string    `json:"comment,omitempty"`
	DecidedBy string    `json:"decidedBy,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

// Source stores and answers approval decisions. Decision returns
// (nil, nil) while the run is still pending.
type Source interface {
	Decision(ctx context.Context, runID string) (*Decision, error)
	Record(ctx context.Context, d Decision) error
}
