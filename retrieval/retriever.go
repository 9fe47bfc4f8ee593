package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultSourceConfidence weights chunks whose source recorded no
// confidence of its own.
const DefaultSourceConfidence = 0.6

// Chunk is a stored unit of prior text with its embedding.
type Chunk struct {
	ID          string            `json:"id"`
	SourceType  string            `json:"sourceType"`
	SourceID    string            `json:"sourceId"`
	Content     string            `json:"content"`
	ContentHash string            `json:"contentHash"`
	Embedding   []float64         `json:"embedding,omitempty"`
	Confidence  float64           `json:"confidence,omitempty"`
	EventAt     *time.Time        `json:"eventAt,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Result is one ranked search hit.
type Result struct {
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
	SourceID   string  `json:"sourceId"`
}

// SearchOptions bound a search.
type SearchOptions struct {
	Limit         int
	MinSimilarity float64
}

// ChunkStore persists context chunks.
type ChunkStore interface {
	InsertChunk(ctx context.Context, c Chunk) error
	// FindByContentHash returns nil when no chunk carries the hash.
	FindByContentHash(ctx context.Context, hash string) (*Chunk, error)
	// ChunksWithEmbeddings returns every chunk whose embedding is non-nil.
	ChunksWithEmbeddings(ctx context.Context) ([]Chunk, error)
}

// Embedder turns text into a vector. *llm.Invoker satisfies this.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Retriever embeds queries and ranks stored chunks.
type Retriever struct {
	store             ChunkStore
	embedder          Embedder
	decayRate         float64
	defaultConfidence float64
	now               func() time.Time
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithDecayRate sets the per-day recency decay rate.
func WithDecayRate(rate float64) RetrieverOption {
	return func(r *Retriever) { r.decayRate = rate }
}

// WithDefaultConfidence sets the weight for chunks without one.
func WithDefaultConfidence(c float64) RetrieverOption {
	return func(r *Retriever) { r.defaultConfidence = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RetrieverOption {
	return func(r *Retriever) { r.now = now }
}

// NewRetriever creates a retriever over the given store and embedder.
func NewRetriever(store ChunkStore, embedder Embedder, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		store:             store,
		embedder:          embedder,
		decayRate:         DefaultDecayRate,
		defaultConfidence: DefaultSourceConfidence,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search embeds the query, scores every stored chunk, filters by the
// minimum combined score, and returns at most Limit results in descending
// score order. Chunks with nil embeddings are skipped, never treated as
// zero-similarity matches.
func (r *Retriever) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := r.store.ChunksWithEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	now := r.now()
	results := make([]Result, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		confidence := c.Confidence
		if confidence == 0 {
			confidence = r.defaultConfidence
		}
		score := CosineSimilarity(queryVec, c.Embedding) *
			RecencyDecay(c.EventAt, now, r.decayRate) *
			confidence
		if score < opts.MinSimilarity {
			continue
		}
		results = append(results, Result{
			Content:    c.Content,
			Similarity: score,
			SourceID:   c.SourceID,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// Ingest embeds and stores content. Empty or whitespace-only content is a
// no-op, as is content whose hash is already stored (no second embedding
// call, no second insert). Returns true when a new chunk was stored.
func (r *Retriever) Ingest(ctx context.Context, content, sourceType, sourceID string, metadata map[string]string) (bool, error) {
	if strings.TrimSpace(content) == "" {
		return false, nil
	}

	hash := ContentHash(content)
	existing, err := r.store.FindByContentHash(ctx, hash)
	if err != nil {
		return false, fmt.Errorf("hash lookup: %w", err)
	}
	if existing != nil {
		slog.Debug("chunk already ingested", "hash", hash, "sourceId", sourceID)
		return false, nil
	}

	vec, err := r.embedder.Embed(ctx, content)
	if err != nil {
		return false, fmt.Errorf("embed content: %w", err)
	}

	id, err := nanoid.New()
	if err != nil {
		return false, fmt.Errorf("chunk id: %w", err)
	}

	var eventAt *time.Time
	if raw, ok := metadata["eventAt"]; ok {
		if t, parseErr := time.Parse(time.RFC3339, raw); parseErr == nil {
			eventAt = &t
		}
	}

	chunk := Chunk{
		ID:          id,
		SourceType:  sourceType,
		SourceID:    sourceID,
		Content:     content,
		ContentHash: hash,
		Embedding:   vec,
		EventAt:     eventAt,
		Metadata:    metadata,
		CreatedAt:   r.now(),
	}
	if err := r.store.InsertChunk(ctx, chunk); err != nil {
		return false, fmt.Errorf("insert chunk: %w", err)
	}
	return true, nil
}

// ContentHash returns the deterministic digest used for idempotent
// ingestion.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
