package store

import (
	"context"
	"fmt"
	"time"

	"github.com/randalmurphal/ticketflow/budget"
)

// InsertUsage implements budget.UsageStore.
func (s *Store) InsertUsage(ctx context.Context, u budget.Usage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage (model, prompt_tokens, completion_tokens, cost_usd, at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.Model, u.PromptTokens, u.CompletionTokens, u.CostUSD, formatTime(u.At),
	)
	if err != nil {
		return fmt.Errorf("store: insert usage: %w", err)
	}
	return nil
}

// SumUsage implements budget.UsageStore. A zero cutoff sums everything.
func (s *Store) SumUsage(ctx context.Context, since time.Time) (budget.Totals, error) {
	totals := budget.Totals{ByModel: make(map[string]budget.ModelTotals)}

	query := `SELECT model, SUM(prompt_tokens), SUM(completion_tokens), SUM(cost_usd)
	          FROM usage`
	var args []any
	if !since.IsZero() {
		query += ` WHERE at >= ?`
		args = append(args, formatTime(since))
	}
	query += ` GROUP BY model`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return totals, fmt.Errorf("store: sum usage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			model string
			mt    budget.ModelTotals
		)
		if err := rows.Scan(&model, &mt.PromptTokens, &mt.CompletionTokens, &mt.CostUSD); err != nil {
			return totals, fmt.Errorf("store: scan usage: %w", err)
		}
		totals.ByModel[model] = mt
		totals.PromptTokens += mt.PromptTokens
		totals.CompletionTokens += mt.CompletionTokens
		totals.CostUSD += mt.CostUSD
	}
	return totals, rows.Err()
}
