package notify

import (
	"context"
	"time"
)

// EventType identifies a run lifecycle event.
type EventType string

// Event types emitted by the runner.
const (
	EventRunStarted     EventType = "run_started"
	EventRunDegraded    EventType = "run_degraded"
	EventApprovalNeeded EventType = "approval_needed"
	EventRunCommitted   EventType = "run_committed"
	EventRunRejected    EventType = "run_rejected"
	EventRunFailed      EventType = "run_failed"
	EventBudgetExceeded EventType = "budget_exceeded"
)

// Severity levels for events.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes one run lifecycle event for notification.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id"`
	FlowID    string         `json:"flow_id"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Notifier sends notifications about run events.
type Notifier interface {
	// Notify sends a notification. Implementations should degrade
	// gracefully; a failed notification never fails the run.
	Notify(ctx context.Context, event Event) error
}

type serviceContextKey string

const notifierServiceKey serviceContextKey = "ticketflow.notifier"

// WithNotifier adds a Notifier to the context.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierServiceKey, n)
}

// NotifierFromContext extracts the Notifier from context.
// Returns nil if no notifier is configured.
func NotifierFromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierServiceKey).(Notifier); ok {
		return n
	}
	return nil
}
