package tracker

import (
	"context"
	"fmt"
	"sync"
)

// Mock is an in-memory Tracker for tests.
type Mock struct {
	mu      sync.Mutex
	seq     int
	created []Issue
	updated map[string]Issue

	// CreateErr, when set, fails every CreateIssue call.
	CreateErr error
	// UpdateErr, when set, fails every UpdateIssue call.
	UpdateErr error
}

// NewMock creates an empty mock tracker.
func NewMock() *Mock {
	return &Mock{updated: make(map[string]Issue)}
}

// CreateIssue records the issue and returns a synthetic key.
func (m *Mock) CreateIssue(_ context.Context, issue Issue) (*Created, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.created = append(m.created, issue)
	key := fmt.Sprintf("%s-%d", issue.Project, m.seq)
	return &Created{
		Key: key,
		URL: fmt.Sprintf("https://tracker.example.com/browse/%s", key),
	}, nil
}

// UpdateIssue records the update.
func (m *Mock) UpdateIssue(_ context.Context, key string, issue Issue) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated[key] = issue
	return nil
}

// CreatedIssues returns a copy of every issue filed so far.
func (m *Mock) CreatedIssues() []Issue {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Issue, len(m.created))
	copy(out, m.created)
	return out
}

// UpdatedIssue returns the last update recorded for key.
func (m *Mock) UpdatedIssue(key string) (Issue, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.updated[key]
	return issue, ok
}
