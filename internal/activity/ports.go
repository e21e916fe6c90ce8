package activity

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Provider,ScoreProvider,Moderator

import (
	"context"
	"time"
)

// HistoryWindow bounds an author-history fetch. Zero values mean unbounded on
// that axis; providers apply their own hard caps.
type HistoryWindow struct {
	// Count caps the number of activities returned, newest first.
	Count int
	// Duration discards activities older than now minus the duration.
	Duration time.Duration
	// Communities, when non-empty, restricts the history to those communities.
	Communities []string
	// Kind restricts the history to posts or comments; empty means both.
	Kind Kind
}

// Provider supplies activity and author data from the platform. Implementations
// live outside the engine; the engine only reads through this interface.
type Provider interface {
	// Author fetches the full profile record for a username.
	Author(ctx context.Context, name string) (*Author, error)

	// AuthorActivities fetches the author's recent activities, newest first,
	// bounded by the window.
	AuthorActivities(ctx context.Context, name string, window HistoryWindow) ([]*Activity, error)
}

// Score is a sentiment/toxicity score for a span of text. Usable is false when
// the scorer could not produce a meaningful value (empty text, unsupported
// language) and the consuming rule should skip rather than fail.
type Score struct {
	Value  float64
	Usable bool
}

// ScoreProvider scores text for sentiment. Consumed as an opaque collaborator.
type ScoreProvider interface {
	Score(ctx context.Context, text string) (Score, error)
}

// Moderator performs the side effects actions are built from. Every method is
// idempotent on the platform side so a retried action is safe.
type Moderator interface {
	Approve(ctx context.Context, activityID string) error
	Remove(ctx context.Context, activityID string) error
	Lock(ctx context.Context, activityID string) error
	Report(ctx context.Context, activityID, reason string) error
	Reply(ctx context.Context, activityID, body string, sticky bool) error
	SetFlair(ctx context.Context, activityID, text, css string) error
}
