package approval

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Source for tests and single-process deployments.
type Memory struct {
	mu        sync.RWMutex
	decisions map[string]Decision
}

// NewMemory creates an empty in-memory decision source.
func NewMemory() *Memory {
	return &Memory{decisions: make(map[string]Decision)}
}

// Decision implements Source.
func (m *Memory) Decision(_ context.Context, runID string) (*Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.decisions[runID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// Record implements Source. The first decision for a run wins; later
// ones fail with ErrAlreadyDecided.
func (m *Memory) Record(_ context.Context, d Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.decisions[d.RunID]; dup {
		return ErrAlreadyDecided
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now()
	}
	m.decisions[d.RunID] = d
	return nil
}
