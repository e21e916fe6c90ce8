// Package rule implements the evaluable conditions of a check: the closed set
// of rule kinds, the tri-state outcome model, and the AND/OR set evaluator
// with short-circuiting and intra-evaluation de-duplication.
package rule

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"modsieve/internal/activity"
	"modsieve/internal/criteria"
	"modsieve/internal/filter"
)

// Outcome is the tri-state result of running one rule. Skipped means the
// rule's own gates did not pass; it is neutral in AND/OR accounting.
type Outcome int

const (
	OutcomeNotTriggered Outcome = iota
	OutcomeTriggered
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTriggered:
		return "triggered"
	case OutcomeNotTriggered:
		return "not triggered"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// Result is the artifact of one rule run.
type Result struct {
	RuleName    string         `json:"ruleName"`
	Kind        Kind           `json:"kind"`
	Fingerprint string         `json:"fingerprint"`
	Outcome     Outcome        `json:"outcome"`
	Summary     string         `json:"summary,omitempty"`
	Data        map[string]any `json:"data,omitempty"`

	// Gate audit trails, present only when the corresponding gate ran.
	AuthorGate *filter.Result `json:"authorGate,omitempty"`
	ItemGate   *filter.Result `json:"itemGate,omitempty"`
}

// Triggered reports whether the rule's condition was satisfied.
func (r *Result) Triggered() bool { return r.Outcome == OutcomeTriggered }

// SetResult is the aggregate of evaluating an ordered member list.
type SetResult struct {
	Results   []*Result        `json:"results"`
	Triggered bool             `json:"triggered"`
	Condition filter.Condition `json:"condition"`
}

// Rule is a single evaluable condition. Implementations are immutable after
// construction; Eval must not mutate shared state.
type Rule interface {
	Name() string
	Kind() Kind
	// Fingerprint is a stable hash of the rule's configuration. Structurally
	// identical rules share a fingerprint so their results can be reused
	// within one activity evaluation.
	Fingerprint() string
	Eval(ctx context.Context, act *activity.Activity, env *Env) (*Result, error)
}

// Env carries the collaborators and the accumulated state of one activity
// evaluation pass. It is not safe for use across activities.
type Env struct {
	Matcher  *criteria.Matcher
	Provider activity.Provider
	Scorer   activity.ScoreProvider
	Logger   *slog.Logger

	prior map[string]*Result
	stats Stats
}

// Stats counts rule work during one evaluation pass; the check flushes these
// to the metrics sink.
type Stats struct {
	Run          int
	Triggered    int
	Deduplicated int
}

// NewEnv builds a fresh evaluation environment for one activity.
func NewEnv(matcher *criteria.Matcher, provider activity.Provider, scorer activity.ScoreProvider, logger *slog.Logger) *Env {
	return &Env{
		Matcher:  matcher,
		Provider: provider,
		Scorer:   scorer,
		Logger:   logger,
		prior:    make(map[string]*Result),
	}
}

// Stats returns the counters accumulated so far.
func (e *Env) Stats() Stats { return e.stats }

func (e *Env) cached(fingerprint string) (*Result, bool) {
	r, ok := e.prior[fingerprint]
	return r, ok
}

func (e *Env) remember(r *Result) {
	// Skipped results are gate-dependent, not premise-dependent, so they are
	// not reusable across differently-gated copies of the same rule.
	if r.Outcome != OutcomeSkipped {
		e.prior[r.Fingerprint] = r
	}
}

// base carries the pieces shared by every rule kind: identity and the
// optional author/item gates evaluated before the kind-specific trigger.
type base struct {
	name        string
	kind        Kind
	fingerprint string
	authorIs    *filter.Options
	itemIs      *filter.Options
}

func (b *base) Name() string        { return b.name }
func (b *base) Kind() Kind          { return b.kind }
func (b *base) Fingerprint() string { return b.fingerprint }

// gate runs the rule's own filters. A non-nil result means the rule is
// skipped; the result carries the failing gate's audit trail.
func (b *base) gate(ctx context.Context, act *activity.Activity, env *Env) (*Result, error) {
	skipped := func(gate string, fr *filter.Result) *Result {
		r := &Result{
			RuleName:    b.name,
			Kind:        b.kind,
			Fingerprint: b.fingerprint,
			Outcome:     OutcomeSkipped,
			Summary:     gate + " gate did not pass",
		}
		if gate == "author" {
			r.AuthorGate = fr
		} else {
			r.ItemGate = fr
		}
		return r
	}

	if !b.authorIs.Empty() {
		fr, err := filter.Evaluate(ctx, env.Matcher, act, b.authorIs)
		if err != nil {
			return nil, fmt.Errorf("rule %q author gate: %w", b.name, err)
		}
		if !fr.Passed {
			return skipped("author", fr), nil
		}
	}
	if !b.itemIs.Empty() {
		fr, err := filter.Evaluate(ctx, env.Matcher, act, b.itemIs)
		if err != nil {
			return nil, fmt.Errorf("rule %q item gate: %w", b.name, err)
		}
		if !fr.Passed {
			return skipped("item", fr), nil
		}
	}
	return nil, nil
}

// result builds a kind-level outcome for this rule.
func (b *base) result(outcome Outcome, summary string, data map[string]any) *Result {
	return &Result{
		RuleName:    b.name,
		Kind:        b.kind,
		Fingerprint: b.fingerprint,
		Outcome:     outcome,
		Summary:     summary,
		Data:        data,
	}
}

// fingerprintConfig hashes the canonical JSON encoding of a rule's premise.
// The rule name is deliberately excluded: two rules with different names but
// identical premises are interchangeable within one evaluation.
func fingerprintConfig(kind Kind, premise any) (string, error) {
	payload, err := json.Marshal(premise)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s rule: %w", kind, err)
	}
	sum := sha256.Sum256(append([]byte(kind+"|"), payload...))
	return hex.EncodeToString(sum[:]), nil
}
