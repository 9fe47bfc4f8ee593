// Package notify delivers run lifecycle events to humans and systems.
//
// Core types:
//   - Notifier: interface for sending notifications
//   - Event: one run lifecycle event with type, message, and metadata
//
// Implementations:
//   - SlackNotifier: posts to a Slack incoming webhook
//   - WebhookNotifier: posts the raw event to a generic webhook
//   - LogNotifier: logs events via slog
//   - MultiNotifier: fans out to several notifiers
//   - NopNotifier: discards everything
//
// The approval_needed event is the important one operationally: it is how
// a suspended run reaches the person who can approve or reject it.
package notify
