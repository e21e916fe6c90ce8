package rule

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"modsieve/internal/activity"
	"modsieve/internal/criteria"
)

// RepeatConfig triggers when the author has posted the same content
// repeatedly. The current activity counts as one occurrence; Threshold
// compares the total and defaults to ">= 3". A percent threshold such as
// ">= 50%" compares the share of the considered items that repeat the
// content instead of the absolute count.
type RepeatConfig struct {
	Threshold string `json:"threshold,omitempty"`
	MaxItems  int    `json:"maxItems,omitempty"` // history bound, default 100
	Lookback  string `json:"lookback,omitempty"`
	// Concurrency bounds the parallel per-item content tests; default 8.
	Concurrency int `json:"concurrency,omitempty"`
}

type repeatRule struct {
	base
	window      activity.HistoryWindow
	threshold   *criteria.Comparison
	concurrency int
}

func newRepeatRule(b base, cfg *RepeatConfig) (*repeatRule, error) {
	window := activity.HistoryWindow{Count: cfg.MaxItems}
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
		expr = ">= 3"
	}
	threshold, err := criteria.ParseComparison(expr)
	if err != nil {
		return nil, fmt.Errorf("rule %q threshold: %w", b.name, err)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	return &repeatRule{base: b, window: window, threshold: threshold, concurrency: concurrency}, nil
}

func (r *repeatRule) Eval(ctx context.Context, act *activity.Activity, env *Env) (*Result, error) {
	if skip, err := r.gate(ctx, act, env); skip != nil || err != nil {
		return skip, err
	}

	history, err := env.Provider.AuthorActivities(ctx, act.AuthorName, r.window)
	if err != nil {
		return nil, fmt.Errorf("rule %q: fetch history: %w", r.name, err)
	}

	reference := normalizeContent(act.Content())
	if reference == "" {
		return r.result(OutcomeNotTriggered, "activity has no comparable content", nil), nil
	}

	// Each history item's test is independent and the decision is a pure
	// count over the unordered results, so the tests run with bounded
	// concurrency. Once a floor threshold is already satisfied the remaining
	// tests cannot change the outcome and are cancelled.
	var repeats atomic.Int64
	repeats.Store(1) // the activity under evaluation

	considered := 1
	for _, h := range history {
		if h.ID != act.ID {
			considered++
		}
	}
	// A percent threshold compares the matching share of the considered
	// items; the denominator is fixed once history is fetched, so the share
	// only grows as matches are found and floor thresholds still
	// short-circuit.
	meets := func(n int) bool {
		if r.threshold.Percent {
			return r.threshold.CompareFloat(float64(n) / float64(considered) * 100)
		}
		return r.threshold.CompareInt(n)
	}

	groupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, groupCtx := errgroup.WithContext(groupCtx)
	g.SetLimit(r.concurrency)

	shortCircuitable := r.threshold.Op == criteria.OpGT || r.threshold.Op == criteria.OpGTE

	for _, h := range history {
		if h.ID == act.ID {
			continue
		}
		g.Go(func() error {
			select {
			case <-groupCtx.Done():
				return nil
			default:
			}
			if normalizeContent(h.Content()) == reference {
				n := repeats.Add(1)
				if shortCircuitable && meets(int(n)) {
					cancel()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rule %q: %w", r.name, err)
	}

	count := int(repeats.Load())
	outcome := OutcomeNotTriggered
	if meets(count) {
		outcome = OutcomeTriggered
	}
	reason := fmt.Sprintf("content repeated %d time(s) vs threshold %s", count, r.threshold)
	if r.threshold.Percent {
		reason = fmt.Sprintf("content repeated %d of %d item(s) vs threshold %s", count, considered, r.threshold)
	}
	return r.result(outcome, reason,
		map[string]any{"repeats": count, "considered": considered, "historySize": len(history)},
	), nil
}

// normalizeContent collapses whitespace and case so trivial edits do not
// defeat repeat detection.
func normalizeContent(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
