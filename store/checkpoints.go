package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ticketflow "github.com/randalmurphal/ticketflow"
)

// SaveCheckpoint implements ticketflow.CheckpointStore. The full state is
// serialized as JSON; the latest checkpoint per run wins.
func (s *Store) SaveCheckpoint(ctx context.Context, runID string, state ticketflow.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("store: marshal checkpoint: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (run_id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		runID, string(payload), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("store: save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint implements ticketflow.CheckpointStore. Returns nil when
// no checkpoint exists for the run.
func (s *Store) LoadCheckpoint(ctx context.Context, runID string) (*ticketflow.State, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM checkpoints WHERE run_id = ?`, runID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load checkpoint: %w", err)
	}

	var state ticketflow.State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("store: decode checkpoint: %w", err)
	}
	return &state, nil
}

// DeleteCheckpoint implements ticketflow.CheckpointStore.
func (s *Store) DeleteCheckpoint(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("store: delete checkpoint: %w", err)
	}
	return nil
}
