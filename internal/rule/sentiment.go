package rule

import (
	"context"
	"fmt"

	"modsieve/internal/activity"
	"modsieve/internal/criteria"
)

// SentimentConfig triggers when the activity's sentiment score satisfies the
// comparison, e.g. "< -0.3" for strongly negative content. A score the
// provider marks unusable skips the rule instead of failing it.
type SentimentConfig struct {
	Score string `json:"score"`
}

type sentimentRule struct {
	base
	score *criteria.Comparison
}

func newSentimentRule(b base, cfg *SentimentConfig) (*sentimentRule, error) {
	if cfg.Score == "" {
		return nil, fmt.Errorf("rule %q: sentiment rule needs a score comparison", b.name)
	}
	score, err := criteria.ParseComparison(cfg.Score)
	if err != nil {
		return nil, fmt.Errorf("rule %q score: %w", b.name, err)
	}
	return &sentimentRule{base: b, score: score}, nil
}

func (r *sentimentRule) Eval(ctx context.Context, act *activity.Activity, env *Env) (*Result, error) {
	if skip, err := r.gate(ctx, act, env); skip != nil || err != nil {
		return skip, err
	}
	if env.Scorer == nil {
		return nil, fmt.Errorf("rule %q: no score provider configured", r.name)
	}

	score, err := env.Scorer.Score(ctx, act.Content())
	if err != nil {
		return nil, fmt.Errorf("rule %q: score content: %w", r.name, err)
	}
	if !score.Usable {
		return r.result(OutcomeSkipped, "scorer could not produce a usable score", nil), nil
	}

	outcome := OutcomeNotTriggered
	if r.score.CompareFloat(score.Value) {
		outcome = OutcomeTriggered
	}
	return r.result(outcome,
		fmt.Sprintf("score %.3f vs %s", score.Value, r.score),
		map[string]any{"score": score.Value},
	), nil
}
