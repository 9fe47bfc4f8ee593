package ticketflow

import (
	"context"

	"github.com/randalmurphal/ticketflow/approval"
	"github.com/randalmurphal/ticketflow/budget"
	"github.com/randalmurphal/ticketflow/llm"
	"github.com/randalmurphal/ticketflow/prompt"
	"github.com/randalmurphal/ticketflow/retrieval"
	"github.com/randalmurphal/ticketflow/tracker"
)

// =============================================================================
// Context Injection Helpers
// =============================================================================
// Nodes receive their collaborators through the context rather than through
// closures, so the same node functions serve every graph instance.

// serviceContextKey is a private type for context keys to avoid collisions.
type serviceContextKey string

// Context keys for workflow services.
const (
	invokerServiceKey   serviceContextKey = "ticketflow.invoker"
	retrieverServiceKey serviceContextKey = "ticketflow.retriever"
	ledgerServiceKey    serviceContextKey = "ticketflow.ledger"
	trackerServiceKey   serviceContextKey = "ticketflow.tracker"
	approvalServiceKey  serviceContextKey = "ticketflow.approvals"
	promptServiceKey    serviceContextKey = "ticketflow.prompts"
)

// WithInvoker adds the model invoker to the context.
func WithInvoker(ctx context.Context, iv *llm.Invoker) context.Context {
	return context.WithValue(ctx, invokerServiceKey, iv)
}

// InvokerFromContext extracts the model invoker, or nil.
func InvokerFromContext(ctx context.Context) *llm.Invoker {
	if iv, ok := ctx.Value(invokerServiceKey).(*llm.Invoker); ok {
		return iv
	}
	return nil
}

// WithRetriever adds the context retriever to the context.
func WithRetriever(ctx context.Context, r *retrieval.Retriever) context.Context {
	return context.WithValue(ctx, retrieverServiceKey, r)
}

// RetrieverFromContext extracts the context retriever, or nil. Nodes treat
// a missing retriever as "no context available", not as a failure.
func RetrieverFromContext(ctx context.Context) *retrieval.Retriever {
	if r, ok := ctx.Value(retrieverServiceKey).(*retrieval.Retriever); ok {
		return r
	}
	return nil
}

// WithLedger adds the budget ledger to the context.
func WithLedger(ctx context.Context, l *budget.Ledger) context.Context {
	return context.WithValue(ctx, ledgerServiceKey, l)
}

// LedgerFromContext extracts the budget ledger, or nil.
func LedgerFromContext(ctx context.Context) *budget.Ledger {
	if l, ok := ctx.Value(ledgerServiceKey).(*budget.Ledger); ok {
		return l
	}
	return nil
}

// WithTracker adds the issue tracker client to the context.
func WithTracker(ctx context.Context, t tracker.Tracker) context.Context {
	return context.WithValue(ctx, trackerServiceKey, t)
}

// TrackerFromContext extracts the issue tracker client, or nil.
func TrackerFromContext(ctx context.Context) tracker.Tracker {
	if t, ok := ctx.Value(trackerServiceKey).(tracker.Tracker); ok {
		return t
	}
	return nil
}

// WithApprovals adds the approval decision source to the context.
func WithApprovals(ctx context.Context, src approval.Source) context.Context {
	return context.WithValue(ctx, approvalServiceKey, src)
}

// ApprovalsFromContext extracts the approval decision source, or nil.
func ApprovalsFromContext(ctx context.Context) approval.Source {
	if src, ok := ctx.Value(approvalServiceKey).(approval.Source); ok {
		return src
	}
	return nil
}

// WithPrompts adds the prompt loader to the context.
func WithPrompts(ctx context.Context, l *prompt.Loader) context.Context {
	return context.WithValue(ctx, promptServiceKey, l)
}

// PromptsFromContext extracts the prompt loader, or nil.
func PromptsFromContext(ctx context.Context) *prompt.Loader {
	if l, ok := ctx.Value(promptServiceKey).(*prompt.Loader); ok {
		return l
	}
	return nil
}

// MustInvokerFromContext extracts the model invoker or panics. Graph setup
// bugs should fail loudly rather than produce empty drafts.
func MustInvokerFromContext(ctx context.Context) *llm.Invoker {
	iv := InvokerFromContext(ctx)
	if iv == nil {
		panic("ticketflow: llm.Invoker not found in context")
	}
	return iv
}
