package ticketflow

import (
	"context"
	"sync"
)

// CheckpointStore persists run state after every completed node so an
// interrupted run can resume from the last completed node. The approval
// suspension relies on this: a waiting run survives process restarts.
type CheckpointStore interface {
	SaveCheckpoint(ctx context.Context, runID string, state State) error
	// LoadCheckpoint returns the last snapshot for the run, or nil if none.
	LoadCheckpoint(ctx context.Context, runID string) (*State, error)
	DeleteCheckpoint(ctx context.Context, runID string) error
}

// MemoryCheckpointStore is an in-process CheckpointStore. Suitable for
// tests and single-process deployments; store.SQLite provides durability.
type MemoryCheckpointStore struct {
	mu    sync.RWMutex
	snaps map[string]State
}

// NewMemoryCheckpointStore creates an empty in-memory checkpoint store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{snaps: make(map[string]State)}
}

// SaveCheckpoint implements CheckpointStore.
func (m *MemoryCheckpointStore) SaveCheckpoint(_ context.Context, runID string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[runID] = state
	return nil
}

// LoadCheckpoint implements CheckpointStore.
func (m *MemoryCheckpointStore) LoadCheckpoint(_ context.Context, runID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snaps[runID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

// DeleteCheckpoint implements CheckpointStore.
func (m *MemoryCheckpointStore) DeleteCheckpoint(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, runID)
	return nil
}
