package llm

import "context"

// CompletionRequest describes one chat-completion call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserInput    string

	// JSONMode asks the model for a JSON object response.
	JSONMode bool
}

// Usage is the token consumption reported for a call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Completion is the result of a chat-completion call.
type Completion struct {
	Content string
	Model   string
	Usage   Usage
}

// Embedding is the result of an embedding call.
type Embedding struct {
	Vector []float64
	Model  string
	Usage  Usage
}

// Client is the model transport. Implementations report usage so the
// Invoker can forward it to the budget ledger.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Embed(ctx context.Context, text string) (*Embedding, error)
}
