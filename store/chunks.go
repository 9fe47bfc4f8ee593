package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/randalmurphal/ticketflow/retrieval"
)

// InsertChunk implements retrieval.ChunkStore. Content-hash collisions
// are ignored so ingestion stays idempotent under races.
func (s *Store) InsertChunk(ctx context.Context, c retrieval.Chunk) error {
	embedding, err := json.Marshal(c.Embedding)
	if err != nil {
		return fmt.Errorf("store: marshal embedding: %w", err)
	}
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshal metadata: %w", err)
	}

	var eventAt sql.NullString
	if c.EventAt != nil {
		eventAt = sql.NullString{String: formatTime(*c.EventAt), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO chunks
		 (id, source_type, source_id, content, content_hash, embedding, confidence, event_at, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SourceType, c.SourceID, c.Content, c.ContentHash,
		string(embedding), c.Confidence, eventAt, string(metadata), formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("store: insert chunk: %w", err)
	}
	return nil
}

// FindByContentHash implements retrieval.ChunkStore.
func (s *Store) FindByContentHash(ctx context.Context, hash string) (*retrieval.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_type, source_id, content, content_hash, embedding, confidence, event_at, metadata, created_at
		 FROM chunks WHERE content_hash = ?`, hash)

	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find chunk: %w", err)
	}
	return chunk, nil
}

// ChunksWithEmbeddings implements retrieval.ChunkStore.
func (s *Store) ChunksWithEmbeddings(ctx context.Context) ([]retrieval.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_type, source_id, content, content_hash, embedding, confidence, event_at, metadata, created_at
		 FROM chunks
		 WHERE embedding IS NOT NULL AND embedding != 'null' AND embedding != '[]'
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: load chunks: %w", err)
	}
	defer rows.Close()

	var chunks []retrieval.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan chunk: %w", err)
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*retrieval.Chunk, error) {
	var (
		c         retrieval.Chunk
		embedding sql.NullString
		eventAt   sql.NullString
		metadata  sql.NullString
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.SourceType, &c.SourceID, &c.Content, &c.ContentHash,
		&embedding, &c.Confidence, &eventAt, &metadata, &createdAt); err != nil {
		return nil, err
	}

	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &c.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
	}
	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		if err := json.Unmarshal([]byte(metadata.String), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if eventAt.Valid {
		t := parseTime(eventAt.String)
		c.EventAt = &t
	}
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}
