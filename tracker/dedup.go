package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// HashSearcher is implemented by backends that can locate an issue by its
// dedup hash label. Optional; without it dedup is per-process only.
type HashSearcher interface {
	FindByContentHash(ctx context.Context, hash string) (*Created, error)
}

// Deduper wraps a Tracker with content-hash idempotency. A create whose
// content hash matches a previously filed issue returns that issue with
// Existing set instead of filing a duplicate. Filed hashes are cached
// in-process; if the backend implements HashSearcher, the backend is
// consulted on cache misses so dedup survives restarts.
type Deduper struct {
	inner Tracker

	mu    sync.Mutex
	filed map[string]Created
}

// WithDedup wraps the tracker with content-hash dedup.
func WithDedup(inner Tracker) *Deduper {
	return &Deduper{inner: inner, filed: make(map[string]Created)}
}

// CreateIssue files the issue unless its content hash is already known.
func (d *Deduper) CreateIssue(ctx context.Context, issue Issue) (*Created, error) {
	hash := ContentHash(issue)

	d.mu.Lock()
	if created, ok := d.filed[hash]; ok {
		d.mu.Unlock()
		created.Existing = true
		slog.Info("issue dedup hit", "key", created.Key, "hash", hash)
		return &created, nil
	}
	d.mu.Unlock()

	if searcher, ok := d.inner.(HashSearcher); ok {
		found, err := searcher.FindByContentHash(ctx, hash)
		if err != nil {
			slog.Warn("dedup search failed, creating anyway", "hash", hash, "error", err)
		} else if found != nil {
			d.remember(hash, *found)
			found.Existing = true
			return found, nil
		}
	}

	issue.Labels = append(issue.Labels, HashLabel(hash))
	created, err := d.inner.CreateIssue(ctx, issue)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	d.remember(hash, *created)
	return created, nil
}

// UpdateIssue passes through to the wrapped tracker.
func (d *Deduper) UpdateIssue(ctx context.Context, key string, issue Issue) error {
	return d.inner.UpdateIssue(ctx, key, issue)
}

func (d *Deduper) remember(hash string, created Created) {
	d.mu.Lock()
	defer d.mu.Unlock()
	created.Existing = false
	d.filed[hash] = created
}
