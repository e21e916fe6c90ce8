package rule

import (
	"context"
	"fmt"

	"modsieve/internal/activity"
	"modsieve/internal/criteria"
	"modsieve/internal/filter"
)

// AuthorConfig triggers on properties of the activity's author. Include and
// exclude follow the same join contract as filter gates, but a failing join
// here means "not triggered" rather than "skipped".
type AuthorConfig struct {
	Include          []*criteria.Author `json:"include,omitempty"`
	Exclude          []*criteria.Author `json:"exclude,omitempty"`
	ExcludeCondition filter.Condition   `json:"excludeCondition,omitempty"`
}

type authorRule struct {
	base
	opts *filter.Options
}

func newAuthorRule(b base, cfg *AuthorConfig) (*authorRule, error) {
	if len(cfg.Include) == 0 && len(cfg.Exclude) == 0 {
		return nil, fmt.Errorf("rule %q: author rule needs include or exclude criteria", b.name)
	}
	opts := &filter.Options{ExcludeCondition: cfg.ExcludeCondition}
	for _, c := range cfg.Include {
		opts.Include = append(opts.Include, c)
	}
	for _, c := range cfg.Exclude {
		opts.Exclude = append(opts.Exclude, c)
	}
	if err := opts.Compile(); err != nil {
		return nil, fmt.Errorf("rule %q: %w", b.name, err)
	}
	return &authorRule{base: b, opts: opts}, nil
}

func (r *authorRule) Eval(ctx context.Context, act *activity.Activity, env *Env) (*Result, error) {
	if skip, err := r.gate(ctx, act, env); skip != nil || err != nil {
		return skip, err
	}

	fr, err := filter.Evaluate(ctx, env.Matcher, act, r.opts)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", r.name, err)
	}

	outcome := OutcomeNotTriggered
	if fr.Passed {
		outcome = OutcomeTriggered
	}
	res := r.result(outcome, fmt.Sprintf("author criteria %s", outcome), map[string]any{
		"criteria": fr.Criteria,
	})
	return res, nil
}
