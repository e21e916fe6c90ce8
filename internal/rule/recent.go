package rule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"modsieve/internal/activity"
	"modsieve/internal/criteria"
)

// RecentConfig triggers on how often the author has been active in the named
// communities within a lookback window. Threshold compares the count of
// matching history items and defaults to ">= 1".
type RecentConfig struct {
	Communities []string      `json:"communities"`
	Lookback    string        `json:"lookback,omitempty"` // e.g. "7 days"; empty = count-bounded only
	MaxItems    int           `json:"maxItems,omitempty"` // default 100
	Kind        activity.Kind `json:"kindFilter,omitempty"`
	Threshold   string        `json:"threshold,omitempty"`
}

type recentRule struct {
	base
	communities map[string]struct{}
	window      activity.HistoryWindow
	threshold   *criteria.Comparison
}

func newRecentRule(b base, cfg *RecentConfig) (*recentRule, error) {
	if len(cfg.Communities) == 0 {
		return nil, fmt.Errorf("rule %q: recent rule needs at least one community", b.name)
	}

	window := activity.HistoryWindow{
		Count: cfg.MaxItems,
		Kind:  cfg.Kind,
	}
	if window.Count == 0 {
		window.Count = 100
	}
	if cfg.Lookback != "" {
		d, err := lookbackDuration(cfg.Lookback)
		if err != nil {
			return nil, fmt.Errorf("rule %q lookback: %w", b.name, err)
		}
		window.Duration = d
	}

	expr := cfg.Threshold
	if expr == "" {
		expr = ">= 1"
	}
	threshold, err := criteria.ParseComparison(expr)
	if err != nil {
		return nil, fmt.Errorf("rule %q threshold: %w", b.name, err)
	}

	communities := make(map[string]struct{}, len(cfg.Communities))
	for _, c := range cfg.Communities {
		communities[strings.ToLower(c)] = struct{}{}
	}

	return &recentRule{base: b, communities: communities, window: window, threshold: threshold}, nil
}

// lookbackDuration parses windows written as comparisons would be, minus the
// operator: "7 days", "12 hours".
func lookbackDuration(s string) (time.Duration, error) {
	cmp, err := criteria.ParseComparison("<= " + s)
	if err != nil {
		return 0, err
	}
	if cmp.Duration == 0 {
		return 0, fmt.Errorf("lookback %q needs a duration unit", s)
	}
	return cmp.Duration, nil
}

func (r *recentRule) Eval(ctx context.Context, act *activity.Activity, env *Env) (*Result, error) {
	if skip, err := r.gate(ctx, act, env); skip != nil || err != nil {
		return skip, err
	}

	history, err := env.Provider.AuthorActivities(ctx, act.AuthorName, r.window)
	if err != nil {
		return nil, fmt.Errorf("rule %q: fetch history: %w", r.name, err)
	}

	count := 0
	perCommunity := make(map[string]int)
	for _, h := range history {
		community := strings.ToLower(h.Community)
		if _, ok := r.communities[community]; !ok {
			continue
		}
		count++
		perCommunity[community]++
	}

	outcome := OutcomeNotTriggered
	if r.threshold.CompareInt(count) {
		outcome = OutcomeTriggered
	}
	return r.result(outcome,
		fmt.Sprintf("%d recent activit(ies) in watched communities vs threshold %s", count, r.threshold),
		map[string]any{"count": count, "perCommunity": perCommunity, "historySize": len(history)},
	), nil
}
