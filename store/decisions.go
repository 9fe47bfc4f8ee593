package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/ticketflow/approval"
)

// Decision implements approval.Source. Returns (nil, nil) while the run
// has no recorded decision.
func (s *Store) Decision(ctx context.Context, runID string) (*approval.Decision, error) {
	var (
		d         approval.Decision
		approved  int
		comment   sql.NullString
		decidedBy sql.NullString
		decidedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, approved, comment, decided_by, decided_at FROM decisions WHERE run_id = ?`,
		runID,
	).Scan(&d.RunID, &approved, &comment, &decidedBy, &decidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load decision: %w", err)
	}

	d.Approved = approved != 0
	d.Comment = comment.String
	d.DecidedBy = decidedBy.String
	d.DecidedAt = parseTime(decidedAt)
	return &d, nil
}

// Record implements approval.Source. The first decision for a run wins.
func (s *Store) Record(ctx context.Context, d approval.Decision) error {
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now()
	}
	approved := 0
	if d.Approved {
		approved = 1
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO decisions (run_id, approved, comment, decided_by, decided_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.RunID, approved, d.Comment, d.DecidedBy, formatTime(d.DecidedAt),
	)
	if err != nil {
		return fmt.Errorf("store: record decision: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return approval.ErrAlreadyDecided
	}
	return nil
}
