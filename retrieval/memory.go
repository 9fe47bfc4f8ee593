package retrieval

import (
	"context"
	"sync"
)

// MemoryStore is an in-process ChunkStore for tests and small deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []Chunk
	byHash map[string]int
}

// NewMemoryStore creates an empty in-memory chunk store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byHash: make(map[string]int)}
}

// InsertChunk implements ChunkStore.
func (m *MemoryStore) InsertChunk(_ context.Context, c Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byHash[c.ContentHash]; dup {
		return nil
	}
	m.byHash[c.ContentHash] = len(m.chunks)
	m.chunks = append(m.chunks, c)
	return nil
}

// FindByContentHash implements ChunkStore.
func (m *MemoryStore) FindByContentHash(_ context.Context, hash string) (*Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byHash[hash]
	if !ok {
		return nil, nil
	}
	c := m.chunks[i]
	return &c, nil
}

// ChunksWithEmbeddings implements ChunkStore.
func (m *MemoryStore) ChunksWithEmbeddings(_ context.Context) ([]Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Chunk, 0, len(m.chunks))
	for _, c := range m.chunks {
		if len(c.Embedding) > 0 {
			out = append(out, c)
		}
	}
	return out, nil
}

// Len returns the number of stored chunks.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}
