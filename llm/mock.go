package llm

import (
	"context"
	"crypto/sha256"
	"math"
	"sync"
)

// MockClient is a scripted Client for tests. Responses are returned in
// order; once exhausted the default response is returned.
type MockClient struct {
	mu              sync.Mutex
	defaultResponse string
	responses       []string
	completeErr     error
	embedErr        error
	embedFn         func(text string) []float64
	completeCalls   []CompletionRequest
	embedCalls      []string
}

// NewMockClient creates a mock that answers every call with defaultResponse.
func NewMockClient(defaultResponse string) *MockClient {
	return &MockClient{defaultResponse: defaultResponse}
}

// WithResponses queues sequential responses ahead of the default.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.responses = append(m.responses, responses...)
	return m
}

// WithCompleteError makes Complete fail with err.
func (m *MockClient) WithCompleteError(err error) *MockClient {
	m.completeErr = err
	return m
}

// WithEmbedError makes Embed fail with err.
func (m *MockClient) WithEmbedError(err error) *MockClient {
	m.embedErr = err
	return m
}

// WithEmbedFunc overrides the deterministic embedding.
func (m *MockClient) WithEmbedFunc(fn func(text string) []float64) *MockClient {
	m.embedFn = fn
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(_ context.Context, req CompletionRequest) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completeCalls = append(m.completeCalls, req)
	if m.completeErr != nil {
		return nil, m.completeErr
	}

	content := m.defaultResponse
	if len(m.responses) > 0 {
		content = m.responses[0]
		m.responses = m.responses[1:]
	}
	return &Completion{
		Content: content,
		Model:   req.Model,
		Usage:   Usage{PromptTokens: len(req.UserInput) / 4, CompletionTokens: len(content) / 4},
	}, nil
}

// Embed implements Client. Without an override it returns a deterministic
// unit-length 8-dim vector derived from the text.
func (m *MockClient) Embed(_ context.Context, text string) (*Embedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.embedCalls = append(m.embedCalls, text)
	if m.embedErr != nil {
		return nil, m.embedErr
	}

	var vec []float64
	if m.embedFn != nil {
		vec = m.embedFn(text)
	} else {
		vec = hashVector(text)
	}
	return &Embedding{
		Vector: vec,
		Model:  "mock-embedding",
		Usage:  Usage{PromptTokens: len(text) / 4},
	}, nil
}

// CompleteCalls returns a copy of the recorded completion requests.
func (m *MockClient) CompleteCalls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.completeCalls))
	copy(out, m.completeCalls)
	return out
}

// EmbedCalls returns a copy of the recorded embedding inputs.
func (m *MockClient) EmbedCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.embedCalls))
	copy(out, m.embedCalls)
	return out
}

func hashVector(text string) []float64 {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float64, 8)
	var norm float64
	for i := range vec {
		vec[i] = float64(sum[i]) - 127.5
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	// Normalize so cosine similarity behaves.
	for i := range vec {
		vec[i] /= math.Sqrt(norm)
	}
	return vec
}
