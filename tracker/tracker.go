// Package tracker abstracts the external issue tracker behind a small
// interface with idempotent creation. Backends exist for Jira, GitHub,
// and GitLab; WithDedup wraps any backend with content-hash dedup so a
// retried commit never files the same ticket twice.
package tracker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Issue is the tracker-neutral ticket payload.
type Issue struct {
	Project     string   `json:"project"`
	Type        string   `json:"type"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Priority    string   `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Components  []string `json:"components,omitempty"`
}

// Created identifies a filed issue.
type Created struct {
	Key string `json:"key"`
	URL string `json:"url,omitempty"`

	// Existing is true when dedup matched a previously filed issue and no
	// new issue was created.
	Existing bool `json:"existing,omitempty"`
}

// Tracker is the external issue tracker.
type Tracker interface {
	CreateIssue(ctx context.Context, issue Issue) (*Created, error)
	UpdateIssue(ctx context.Context, key string, issue Issue) error
}

// ContentHash returns the digest that identifies an issue's content for
// dedup. Only the fields that define identity participate; labels and
// components are presentation.
func ContentHash(issue Issue) string {
	payload := fmt.Sprintf("%s|%s|%s|%s", issue.Project, issue.Type, issue.Summary, issue.Description)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// HashLabel returns the label a deduping tracker attaches so filed issues
// can be found again across process restarts.
func HashLabel(hash string) string {
	if len(hash) > 16 {
		hash = hash[:16]
	}
	return "tf-hash-" + hash
}
