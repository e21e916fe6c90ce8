package rule

import (
	"context"
	"fmt"
	"regexp"

	"modsieve/internal/activity"
	"modsieve/internal/criteria"
)

// RegexConfig triggers when the activity's content matches any declared
// pattern often enough. Threshold compares the total match count across all
// patterns; it defaults to "> 0" (any match triggers).
type RegexConfig struct {
	Patterns  []string `json:"patterns"`
	Threshold string   `json:"threshold,omitempty"`
}

type regexRule struct {
	base
	patterns  []*regexp.Regexp
	threshold *criteria.Comparison
}

func newRegexRule(b base, cfg *RegexConfig) (*regexRule, error) {
	if len(cfg.Patterns) == 0 {
		return nil, fmt.Errorf("rule %q: regex rule needs at least one pattern", b.name)
	}

	patterns := make([]*regexp.Regexp, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("rule %q: compile pattern %q: %w", b.name, p, err)
		}
		patterns = append(patterns, re)
	}

	expr := cfg.Threshold
	if expr == "" {
		expr = "> 0"
	}
	threshold, err := criteria.ParseComparison(expr)
	if err != nil {
		return nil, fmt.Errorf("rule %q threshold: %w", b.name, err)
	}

	return &regexRule{base: b, patterns: patterns, threshold: threshold}, nil
}

func (r *regexRule) Eval(ctx context.Context, act *activity.Activity, env *Env) (*Result, error) {
	if skip, err := r.gate(ctx, act, env); skip != nil || err != nil {
		return skip, err
	}

	content := act.Content()
	matches := 0
	for _, re := range r.patterns {
		matches += len(re.FindAllStringIndex(content, -1))
	}

	outcome := OutcomeNotTriggered
	if r.threshold.CompareInt(matches) {
		outcome = OutcomeTriggered
	}
	return r.result(outcome,
		fmt.Sprintf("%d match(es) vs threshold %s", matches, r.threshold),
		map[string]any{"matches": matches},
	), nil
}
