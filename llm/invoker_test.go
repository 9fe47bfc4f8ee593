package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/randalmurphal/ticketflow/budget"
)

type reviewPayload struct {
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
}

func (p *reviewPayload) Validate() error {
	if p.Verdict == "" {
		return errors.New("verdict required")
	}
	return nil
}

func fastInvoker(client Client, ledger *budget.Ledger) *Invoker {
	return NewInvoker(client, ledger, WithBaseDelay(time.Millisecond))
}

func TestStructured(t *testing.T) {
	client := NewMockClient(`{"verdict": "APPROVE", "confidence": 0.9}`)
	iv := fastInvoker(client, nil)

	var out reviewPayload
	usage, err := iv.Structured(context.Background(), TaskReview, "system", "input", &out)
	if err != nil {
		t.Fatal(err)
	}

	if out.Verdict != "APPROVE" || out.Confidence != 0.9 {
		t.Errorf("out = %+v", out)
	}
	if usage.PromptTokens == 0 {
		t.Error("usage should be reported")
	}

	calls := client.CompleteCalls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	if calls[0].Model != DefaultModels[TaskReview] {
		t.Errorf("model = %q, want the review tier", calls[0].Model)
	}
	if !calls[0].JSONMode {
		t.Error("structured calls must request JSON mode")
	}
}

func TestStructured_UnwrapsCodeFences(t *testing.T) {
	client := NewMockClient("Here you go:\n```json\n{\"verdict\": \"REJECT\", \"confidence\": 1}\n```\nanything else?")
	iv := fastInvoker(client, nil)

	var out reviewPayload
	if _, err := iv.Structured(context.Background(), TaskReview, "s", "u", &out); err != nil {
		t.Fatal(err)
	}
	if out.Verdict != "REJECT" {
		t.Errorf("out = %+v", out)
	}
}

func TestStructured_ValidatorFailure(t *testing.T) {
	client := NewMockClient(`{"confidence": 0.9}`)
	iv := fastInvoker(client, nil)

	var out reviewPayload
	_, err := iv.Structured(context.Background(), TaskReview, "s", "u", &out)
	if !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("err = %v, want ErrInvalidOutput", err)
	}
}

func TestStructured_MalformedJSON(t *testing.T) {
	client := NewMockClient("not json at all")
	iv := fastInvoker(client, nil)

	var out reviewPayload
	_, err := iv.Structured(context.Background(), TaskReview, "s", "u", &out)
	if !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("err = %v, want ErrInvalidOutput", err)
	}
}

func TestStructured_RetriesTransientFailures(t *testing.T) {
	calls := 0
	client := &flakyClient{
		failures: 2,
		payload:  `{"verdict": "APPROVE", "confidence": 1}`,
		onCall:   func() { calls++ },
	}
	iv := NewInvoker(client, nil, WithMaxRetries(2), WithBaseDelay(time.Millisecond))

	var out reviewPayload
	if _, err := iv.Structured(context.Background(), TaskReview, "s", "u", &out); err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 2 failures then success", calls)
	}
}

func TestStructured_RetriesExhausted(t *testing.T) {
	boom := errors.New("rate limited")
	client := NewMockClient("").WithCompleteError(boom)
	iv := NewInvoker(client, nil, WithMaxRetries(1), WithBaseDelay(time.Millisecond))

	var out reviewPayload
	_, err := iv.Structured(context.Background(), TaskReview, "s", "u", &out)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the transport error", err)
	}
	if len(client.CompleteCalls()) != 2 {
		t.Errorf("calls = %d, want initial plus one retry", len(client.CompleteCalls()))
	}
}

func TestStructured_BudgetPrecheck(t *testing.T) {
	store := budget.NewMemoryStore()
	ledger := budget.NewLedger(store, budget.WithDailyLimit(0.001))
	if _, err := ledger.LogUsage(context.Background(), budget.Usage{Model: "gpt-4o", CostUSD: 1}); err != nil {
		t.Fatal(err)
	}

	client := NewMockClient(`{"verdict": "APPROVE", "confidence": 1}`)
	iv := fastInvoker(client, ledger)

	var out reviewPayload
	_, err := iv.Structured(context.Background(), TaskReview, "s", "u", &out)
	if !errors.Is(err, budget.ErrExceeded) {
		t.Fatalf("err = %v, want budget.ErrExceeded", err)
	}
	if len(client.CompleteCalls()) != 0 {
		t.Error("no model call over budget")
	}
}

func TestStructured_RecordsUsage(t *testing.T) {
	store := budget.NewMemoryStore()
	ledger := budget.NewLedger(store)

	client := NewMockClient(`{"verdict": "APPROVE", "confidence": 1}`)
	iv := fastInvoker(client, ledger)

	var out reviewPayload
	if _, err := iv.Structured(context.Background(), TaskReview, "s", "some user input", &out); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Errorf("usage records = %d, want 1", store.Len())
	}
}

func TestEmbed(t *testing.T) {
	client := NewMockClient("")
	iv := fastInvoker(client, nil)

	vec, err := iv.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) == 0 {
		t.Error("empty vector")
	}

	again, err := iv.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatal(err)
	}
	if vec[0] != again[0] {
		t.Error("mock embedding should be deterministic")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding prose", `Sure! {"a": 1} Hope that helps.`, `{"a": 1}`},
		{"no json", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModelMap_For(t *testing.T) {
	if got := DefaultModels.For(TaskClassify); got != "gpt-4o-mini" {
		t.Errorf("classify model = %q", got)
	}
	if got := DefaultModels.For(Task("unknown")); got != "gpt-4o" {
		t.Errorf("unknown task model = %q, want default tier", got)
	}
}

// flakyClient fails the first n Complete calls.
type flakyClient struct {
	failures int
	payload  string
	onCall   func()
}

func (f *flakyClient) Complete(_ context.Context, req CompletionRequest) (*Completion, error) {
	if f.onCall != nil {
		f.onCall()
	}
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("transient")
	}
	return &Completion{Content: f.payload, Model: req.Model, Usage: Usage{PromptTokens: 1}}, nil
}

func (f *flakyClient) Embed(_ context.Context, text string) (*Embedding, error) {
	return &Embedding{Vector: []float64{1}, Model: "flaky-embed"}, nil
}
