// Package filter aggregates criteria bundles into a single pass/fail gate.
//
// Include and exclude lists have deliberately different join semantics.
// Include is an OR across bundles with short-circuit on the first full pass.
// Exclude joins the NEGATION of each bundle result: in OR mode the gate passes
// when at least one exclude bundle fails to match the activity, in AND mode
// only when every exclude bundle fails to match. This is the observed contract
// of the system being gated and must not be "simplified" to NOT(include).
package filter

import (
	"context"
	"fmt"

	"modsieve/internal/activity"
	"modsieve/internal/criteria"
)

// Condition joins multiple members of a filter or rule set.
type Condition string

const (
	ConditionAND Condition = "AND"
	ConditionOR  Condition = "OR"
)

// ParseCondition validates a join condition string.
func ParseCondition(s string) (Condition, error) {
	switch Condition(s) {
	case ConditionAND, ConditionOR:
		return Condition(s), nil
	case "":
		return ConditionOR, nil
	}
	return "", fmt.Errorf("unknown join condition %q", s)
}

// Options declares a filter gate. When Include is non-empty Exclude is
// ignored entirely. An empty Options always passes.
type Options struct {
	Include          []criteria.Set
	Exclude          []criteria.Set
	ExcludeCondition Condition
}

// Empty reports whether the filter declares no criteria at all.
func (o *Options) Empty() bool {
	return o == nil || (len(o.Include) == 0 && len(o.Exclude) == 0)
}

// Compile precompiles every criteria bundle and validates the exclude join
// condition. Called once at configuration-build time.
func (o *Options) Compile() error {
	if o == nil {
		return nil
	}
	if o.ExcludeCondition == "" {
		o.ExcludeCondition = ConditionOR
	}
	if o.ExcludeCondition != ConditionAND && o.ExcludeCondition != ConditionOR {
		return fmt.Errorf("unknown exclude condition %q", o.ExcludeCondition)
	}
	for i, c := range o.Include {
		if err := c.Compile(); err != nil {
			return fmt.Errorf("include[%d]: %w", i, err)
		}
	}
	for i, c := range o.Exclude {
		if err := c.Compile(); err != nil {
			return fmt.Errorf("exclude[%d]: %w", i, err)
		}
	}
	return nil
}

// Result is the gate outcome plus the audit trail of every criteria bundle
// that was actually evaluated (bundles skipped by short-circuit are absent).
type Result struct {
	Passed   bool               `json:"passed"`
	Criteria []*criteria.Result `json:"criteria,omitempty"`
}

// Evaluate runs the gate against one activity.
func Evaluate(ctx context.Context, m *criteria.Matcher, act *activity.Activity, o *Options) (*Result, error) {
	if o.Empty() {
		return &Result{Passed: true}, nil
	}

	if len(o.Include) > 0 {
		return evaluateInclude(ctx, m, act, o.Include)
	}
	return evaluateExclude(ctx, m, act, o.Exclude, o.ExcludeCondition)
}

// evaluateInclude passes on the first bundle that fully passes.
func evaluateInclude(ctx context.Context, m *criteria.Matcher, act *activity.Activity, include []criteria.Set) (*Result, error) {
	res := &Result{}
	for _, c := range include {
		cr, err := c.Match(ctx, m, act)
		if err != nil {
			return nil, err
		}
		res.Criteria = append(res.Criteria, cr)
		if cr.Passed {
			res.Passed = true
			return res, nil
		}
	}
	return res, nil
}

// evaluateExclude joins the negation of each bundle result. OR mode needs one
// negated pass and can short-circuit on it; AND mode needs all of them and can
// short-circuit on the first bundle that does match.
func evaluateExclude(ctx context.Context, m *criteria.Matcher, act *activity.Activity, exclude []criteria.Set, cond Condition) (*Result, error) {
	res := &Result{}
	for _, c := range exclude {
		cr, err := c.Match(ctx, m, act)
		if err != nil {
			return nil, err
		}
		res.Criteria = append(res.Criteria, cr)

		notMatched := !cr.Passed
		if cond == ConditionOR && notMatched {
			res.Passed = true
			return res, nil
		}
		if cond == ConditionAND && !notMatched {
			res.Passed = false
			return res, nil
		}
	}
	// OR: no bundle failed to match, gate fails.
	// AND: every bundle failed to match, gate passes.
	res.Passed = cond == ConditionAND
	return res, nil
}
