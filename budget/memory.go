package budget

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process UsageStore. The mutex makes the running
// total a true atomic add rather than a read-modify-write race.
type MemoryStore struct {
	mu      sync.Mutex
	records []Usage
}

// NewMemoryStore creates an empty in-memory usage store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// InsertUsage implements UsageStore.
func (m *MemoryStore) InsertUsage(_ context.Context, u Usage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, u)
	return nil
}

// SumUsage implements UsageStore.
func (m *MemoryStore) SumUsage(_ context.Context, since time.Time) (Totals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	totals := Totals{ByModel: make(map[string]ModelTotals)}
	for _, r := range m.records {
		if !since.IsZero() && r.At.Before(since) {
			continue
		}
		totals.PromptTokens += r.PromptTokens
		totals.CompletionTokens += r.CompletionTokens
		totals.CostUSD += r.CostUSD

		mt := totals.ByModel[r.Model]
		mt.PromptTokens += r.PromptTokens
		mt.CompletionTokens += r.CompletionTokens
		mt.CostUSD += r.CostUSD
		totals.ByModel[r.Model] = mt
	}
	return totals, nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
