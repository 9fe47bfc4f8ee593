// Package retrieval grounds runs in prior context. Stored chunks are
// scored by cosine similarity, down-weighted by exponential recency decay
// and a per-source confidence weight, then filtered and ranked. Ingestion
// is idempotent by content hash: re-ingesting known content performs no
// embedding call and no insert.
package retrieval
