package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/ticketflow/budget"
)

// ErrInvalidOutput indicates the model's response did not satisfy the
// requested output schema.
var ErrInvalidOutput = errors.New("model output failed schema validation")

// Invoker defaults.
const (
	DefaultMaxRetries     = 2
	DefaultBaseDelay      = 500 * time.Millisecond
	DefaultAttemptTimeout = 60 * time.Second
)

// Validator is implemented by output types that carry their own schema
// checks beyond JSON decoding.
type Validator interface {
	Validate() error
}

// Invoker calls the model with a typed output contract. Before every call
// it checks today's spend against the budget ceiling; on success it
// forwards token usage to the ledger before returning the parsed payload.
// Transient failures are retried with exponential backoff.
type Invoker struct {
	client         Client
	ledger         *budget.Ledger
	models         ModelMap
	maxRetries     int
	baseDelay      time.Duration
	attemptTimeout time.Duration
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithMaxRetries sets the number of additional attempts after a failure.
func WithMaxRetries(n int) InvokerOption {
	return func(iv *Invoker) { iv.maxRetries = n }
}

// WithBaseDelay sets the initial backoff delay (doubled per retry).
func WithBaseDelay(d time.Duration) InvokerOption {
	return func(iv *Invoker) { iv.baseDelay = d }
}

// WithAttemptTimeout bounds each attempt's wall-clock time, independent of
// the retry schedule.
func WithAttemptTimeout(d time.Duration) InvokerOption {
	return func(iv *Invoker) { iv.attemptTimeout = d }
}

// WithModels replaces the task-to-model mapping.
func WithModels(m ModelMap) InvokerOption {
	return func(iv *Invoker) { iv.models = m }
}

// NewInvoker creates an invoker. The ledger may be nil, in which case no
// budget enforcement or usage recording happens (tests only).
func NewInvoker(client Client, ledger *budget.Ledger, opts ...InvokerOption) *Invoker {
	iv := &Invoker{
		client:         client,
		ledger:         ledger,
		models:         DefaultModels,
		maxRetries:     DefaultMaxRetries,
		baseDelay:      DefaultBaseDelay,
		attemptTimeout: DefaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Structured invokes the model for the given task and decodes the JSON
// response into out. If out implements Validator, its Validate method runs
// after decoding; any failure is reported as ErrInvalidOutput.
func (iv *Invoker) Structured(ctx context.Context, task Task, systemPrompt, userInput string, out any) (Usage, error) {
	if err := iv.precheck(ctx); err != nil {
		return Usage{}, err
	}

	req := CompletionRequest{
		Model:        iv.models.For(task),
		SystemPrompt: systemPrompt,
		UserInput:    userInput,
		JSONMode:     true,
	}
	comp, err := iv.complete(ctx, req)
	if err != nil {
		return Usage{}, err
	}
	iv.record(ctx, comp.Model, req.Model, comp.Usage)

	payload := ExtractJSON(comp.Content)
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return comp.Usage, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return comp.Usage, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	}
	return comp.Usage, nil
}

// Embed embeds text under the same budget and retry policy.
func (iv *Invoker) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := iv.precheck(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= iv.maxRetries; attempt++ {
		if err := iv.backoff(ctx, attempt); err != nil {
			return nil, err
		}
		actx, cancel := context.WithTimeout(ctx, iv.attemptTimeout)
		emb, err := iv.client.Embed(actx, text)
		cancel()
		if err == nil {
			iv.record(ctx, emb.Model, emb.Model, emb.Usage)
			return emb.Vector, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("embed after %d attempts: %w", iv.maxRetries+1, lastErr)
}

// precheck raises budget.ErrExceeded before any call is attempted.
func (iv *Invoker) precheck(ctx context.Context) error {
	if iv.ledger == nil {
		return nil
	}
	over, err := iv.ledger.OverBudget(ctx)
	if err != nil {
		slog.Warn("budget precheck failed, allowing call", "error", err)
		return nil
	}
	if over {
		return budget.ErrExceeded
	}
	return nil
}

func (iv *Invoker) complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	var lastErr error
	for attempt := 0; attempt <= iv.maxRetries; attempt++ {
		if err := iv.backoff(ctx, attempt); err != nil {
			return nil, err
		}
		actx, cancel := context.WithTimeout(ctx, iv.attemptTimeout)
		comp, err := iv.client.Complete(actx, req)
		cancel()
		if err == nil {
			return comp, nil
		}
		lastErr = err
		slog.Debug("model call failed", "model", req.Model, "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("complete after %d attempts: %w", iv.maxRetries+1, lastErr)
}

// backoff waits baseDelay * 2^(attempt-1) before retries; no wait on the
// first attempt.
func (iv *Invoker) backoff(ctx context.Context, attempt int) error {
	if attempt == 0 {
		return nil
	}
	delay := iv.baseDelay << (attempt - 1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (iv *Invoker) record(ctx context.Context, model, fallbackModel string, usage Usage) {
	if iv.ledger == nil {
		return
	}
	if model == "" {
		model = fallbackModel
	}
	// Usage must land even if the caller's context is already done.
	_, err := iv.ledger.LogUsage(context.WithoutCancel(ctx), budget.Usage{
		Model:            model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
	})
	if err != nil {
		slog.Warn("usage record failed", "model", model, "error", err)
	}
}

// ExtractJSON pulls a JSON payload out of model output that may wrap it in
// code fences or surrounding prose.
func ExtractJSON(output string) string {
	output = strings.TrimSpace(output)

	if start := strings.Index(output, "```json"); start != -1 {
		start += 7
		if end := strings.Index(output[start:], "```"); end != -1 {
			return strings.TrimSpace(output[start : start+end])
		}
	} else if start := strings.Index(output, "```"); start != -1 {
		start += 3
		if end := strings.Index(output[start:], "```"); end != -1 {
			return strings.TrimSpace(output[start : start+end])
		}
	}

	if start := strings.Index(output, "{"); start != -1 {
		if end := strings.LastIndex(output, "}"); end > start {
			return output[start : end+1]
		}
	}
	return output
}
