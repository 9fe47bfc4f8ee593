package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func sampleEvent(t EventType) Event {
	return Event{
		Type:      t,
		RunID:     "run-123",
		FlowID:    "ticket-intake",
		Message:   "issue TF-42 filed",
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := n.Notify(context.Background(), sampleEvent(EventRunCommitted)); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "issue TF-42 filed") {
		t.Errorf("log output missing message: %s", out)
	}
	if !strings.Contains(out, "run-123") {
		t.Errorf("log output missing run_id: %s", out)
	}
}

func TestLogNotifier_SeverityMapsToLevel(t *testing.T) {
	tests := []struct {
		severity string
		want     string
	}{
		{SeverityInfo, "level=INFO"},
		{SeverityWarning, "level=WARN"},
		{SeverityError, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			var buf bytes.Buffer
			n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

			ev := sampleEvent(EventRunDegraded)
			ev.Severity = tt.severity
			if err := n.Notify(context.Background(), ev); err != nil {
				t.Fatalf("Notify() error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want substring %q", buf.String(), tt.want)
			}
		})
	}
}

func TestLogNotifier_NilLoggerFallsBack(t *testing.T) {
	if NewLogNotifier(nil).Logger == nil {
		t.Error("nil logger should fall back to slog.Default")
	}
}

func TestWebhookNotifier_PostsEventJSON(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		body, _ = io.ReadAll(r.Body)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, map[string]string{"Authorization": "Bearer tok"})
	if err := n.Notify(context.Background(), sampleEvent(EventApprovalNeeded)); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	var got Event
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("response body is not an Event: %v", err)
	}
	if got.RunID != "run-123" || got.Type != EventApprovalNeeded {
		t.Errorf("delivered event = %+v", got)
	}
}

func TestWebhookNotifier_SetsHeaders(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, map[string]string{"Authorization": "Bearer tok"})
	if err := n.Notify(context.Background(), sampleEvent(EventRunStarted)); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if auth != "Bearer tok" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil)
	if err := n.Notify(context.Background(), sampleEvent(EventRunFailed)); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestSlackNotifier(t *testing.T) {
	var payload slackPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL,
		WithSlackChannel("#tickets"),
		WithSlackUsername("ticketbot"),
	)

	ev := sampleEvent(EventApprovalNeeded)
	ev.Metadata = map[string]any{"summary": "Add rate limiting to ingest API"}
	if err := n.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	if payload.Channel != "#tickets" || payload.Username != "ticketbot" {
		t.Errorf("payload routing = %q/%q", payload.Channel, payload.Username)
	}
	if len(payload.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(payload.Attachments))
	}
	att := payload.Attachments[0]
	if att.Text != ev.Message {
		t.Errorf("attachment text = %q", att.Text)
	}
	if len(att.Fields) != 1 || att.Fields[0].Title != "summary" {
		t.Errorf("metadata fields = %+v", att.Fields)
	}
}

func TestEmojiForEvent(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventRunStarted, ":rocket:"},
		{EventRunCommitted, ":white_check_mark:"},
		{EventRunRejected, ":no_entry_sign:"},
		{EventRunFailed, ":x:"},
		{EventApprovalNeeded, ":eyes:"},
		{EventRunDegraded, ":warning:"},
		{EventBudgetExceeded, ":warning:"},
		{EventType("custom"), ":mega:"},
	}
	for _, tt := range tests {
		if got := emojiForEvent(tt.eventType); got != tt.want {
			t.Errorf("emojiForEvent(%s) = %s, want %s", tt.eventType, got, tt.want)
		}
	}
}

func TestColorForSeverity(t *testing.T) {
	tests := []struct {
		severity string
		want     string
	}{
		{SeverityInfo, "good"},
		{SeverityWarning, "warning"},
		{SeverityError, "danger"},
		{"", "good"},
	}
	for _, tt := range tests {
		if got := colorForSeverity(tt.severity); got != tt.want {
			t.Errorf("colorForSeverity(%q) = %s, want %s", tt.severity, got, tt.want)
		}
	}
}

type recordingNotifier struct {
	name  string
	calls *[]string
	err   error
}

func (m *recordingNotifier) Notify(ctx context.Context, event Event) error {
	*m.calls = append(*m.calls, m.name)
	return m.err
}

func TestMultiNotifier_FansOut(t *testing.T) {
	var calls []string
	multi := NewMultiNotifier(
		&recordingNotifier{name: "slack", calls: &calls},
		&recordingNotifier{name: "webhook", calls: &calls},
	)

	if err := multi.Notify(context.Background(), sampleEvent(EventRunStarted)); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if len(calls) != 2 || calls[0] != "slack" || calls[1] != "webhook" {
		t.Errorf("calls = %v, want [slack webhook]", calls)
	}
}

func TestMultiNotifier_ContinuesPastFailure(t *testing.T) {
	boom := errors.New("slack down")
	var calls []string
	multi := NewMultiNotifier(
		&recordingNotifier{name: "slack", calls: &calls, err: boom},
		&recordingNotifier{name: "webhook", calls: &calls},
	)
	multi.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	err := multi.Notify(context.Background(), sampleEvent(EventRunCommitted))
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want the failed notifier's error", err)
	}
	if len(calls) != 2 {
		t.Errorf("calls = %d, want both notifiers reached", len(calls))
	}
}

func TestNopNotifier(t *testing.T) {
	if err := (NopNotifier{}).Notify(context.Background(), sampleEvent(EventRunStarted)); err != nil {
		t.Errorf("Notify() error: %v", err)
	}
}

func TestNotifierContext(t *testing.T) {
	ctx := context.Background()
	if NotifierFromContext(ctx) != nil {
		t.Error("empty context should have no notifier")
	}

	ctx = WithNotifier(ctx, NopNotifier{})
	if NotifierFromContext(ctx) == nil {
		t.Error("notifier lost in context round trip")
	}
}
