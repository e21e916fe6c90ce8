// Package record fans evaluation results out to named destinations. A check's
// post-behavior directive lists which destinations its result goes to; the
// orchestrator resolves those names against a Recorder.
package record

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"modsieve/internal/check"
)

// Entry is one recorded (activity, check) outcome. Kept flat and
// transport-agnostic so sinks can serialize it however they need.
type Entry struct {
	RecordedAt   time.Time     `json:"recordedAt"`
	RunName      string        `json:"runName"`
	ActivityID   string        `json:"activityId"`
	Community    string        `json:"community"`
	AuthorName   string        `json:"authorName"`
	CheckResult  *check.Result `json:"checkResult"`
	EvaluationID string        `json:"evaluationId"`
}

// Sink receives entries for one destination.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
	Close() error
}

// Recorder routes entries to named sinks. Recording is best effort: a failing
// sink is logged and never blocks evaluation.
type Recorder struct {
	sinks  map[string]Sink
	logger *slog.Logger
}

// NewRecorder builds a recorder over named sinks.
func NewRecorder(sinks map[string]Sink, logger *slog.Logger) *Recorder {
	return &Recorder{sinks: sinks, logger: logger}
}

// Has reports whether a destination name is known; run-config validation uses
// it to reject unknown recordTo names up front.
func (r *Recorder) Has(name string) bool {
	_, ok := r.sinks[name]
	return ok
}

// Record sends the entry to each named destination.
func (r *Recorder) Record(ctx context.Context, destinations []string, entry Entry) {
	for _, name := range destinations {
		sink, ok := r.sinks[name]
		if !ok {
			// Unknown names are rejected at config-build time; reaching this
			// means a sink was removed at runtime. Log and move on.
			if r.logger != nil {
				r.logger.WarnContext(ctx, "unknown record destination", "destination", name)
			}
			continue
		}
		if err := sink.Record(ctx, entry); err != nil && r.logger != nil {
			r.logger.WarnContext(ctx, "record destination failed",
				"destination", name,
				"check", entry.CheckResult.CheckName,
				"error", err,
			)
		}
	}
}

// Close closes every sink, keeping the first error.
func (r *Recorder) Close() error {
	var firstErr error
	for name, sink := range r.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close sink %q: %w", name, err)
		}
	}
	return firstErr
}
