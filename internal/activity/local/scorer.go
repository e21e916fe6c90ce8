package local

import (
	"context"

	"modsieve/internal/activity"
)

// NullScorer implements activity.ScoreProvider without a scoring backend:
// every score is unusable, so sentiment rules skip instead of failing.
type NullScorer struct{}

func (NullScorer) Score(_ context.Context, _ string) (activity.Score, error) {
	return activity.Score{Usable: false}, nil
}
