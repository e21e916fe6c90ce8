package local

import (
	"context"
	"log/slog"
)

// LogModerator implements activity.Moderator by recording intended side
// effects in the structured log. It stands in when no platform client is
// configured; combined with server-wide dry-run it makes the service safe to
// point at live configuration.
type LogModerator struct {
	logger *slog.Logger
}

// NewLogModerator constructs a moderator that logs every call.
func NewLogModerator(logger *slog.Logger) *LogModerator {
	return &LogModerator{logger: logger.With("component", "moderator")}
}

func (m *LogModerator) Approve(ctx context.Context, activityID string) error {
	m.logger.InfoContext(ctx, "approve", "activity_id", activityID)
	return nil
}

func (m *LogModerator) Remove(ctx context.Context, activityID string) error {
	m.logger.InfoContext(ctx, "remove", "activity_id", activityID)
	return nil
}

func (m *LogModerator) Lock(ctx context.Context, activityID string) error {
	m.logger.InfoContext(ctx, "lock", "activity_id", activityID)
	return nil
}

func (m *LogModerator) Report(ctx context.Context, activityID, reason string) error {
	m.logger.InfoContext(ctx, "report", "activity_id", activityID, "reason", reason)
	return nil
}

func (m *LogModerator) Reply(ctx context.Context, activityID, body string, sticky bool) error {
	m.logger.InfoContext(ctx, "reply", "activity_id", activityID, "sticky", sticky, "body_len", len(body))
	return nil
}

func (m *LogModerator) SetFlair(ctx context.Context, activityID, text, css string) error {
	m.logger.InfoContext(ctx, "set flair", "activity_id", activityID, "text", text, "css", css)
	return nil
}
