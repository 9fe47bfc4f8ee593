package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes events to a slog.Logger. It is the default channel
// for local runs where no webhook is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

// NewLogNotifier wraps logger; a nil logger falls back to slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

// Notify implements Notifier. Event severity maps onto the slog level.
func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	level := slog.LevelInfo
	switch event.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}

	n.Logger.Log(ctx, level, event.Message,
		"type", event.Type,
		"run_id", event.RunID,
		"flow_id", event.FlowID,
		"metadata", event.Metadata,
	)
	return nil
}
