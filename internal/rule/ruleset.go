package rule

import (
	"context"
	"fmt"

	"modsieve/internal/activity"
	"modsieve/internal/filter"
)

// RuleSetConfig nests an ordered member list with its own join condition.
// Members may themselves be rulesets.
type RuleSetConfig struct {
	Condition filter.Condition `json:"condition,omitempty"`
	Rules     []Config         `json:"rules"`
}

type ruleSetRule struct {
	base
	condition filter.Condition
	members   []Rule
}

func newRuleSetRule(b base, cfg *RuleSetConfig) (*ruleSetRule, error) {
	if len(cfg.Rules) == 0 {
		return nil, fmt.Errorf("rule %q: ruleset needs at least one member", b.name)
	}
	condition, err := filter.ParseCondition(string(cfg.Condition))
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", b.name, err)
	}
	members := make([]Rule, 0, len(cfg.Rules))
	for i, mc := range cfg.Rules {
		member, err := New(mc)
		if err != nil {
			return nil, fmt.Errorf("rule %q member %d: %w", b.name, i, err)
		}
		members = append(members, member)
	}
	return &ruleSetRule{base: b, condition: condition, members: members}, nil
}

func (r *ruleSetRule) Eval(ctx context.Context, act *activity.Activity, env *Env) (*Result, error) {
	if skip, err := r.gate(ctx, act, env); skip != nil || err != nil {
		return skip, err
	}

	set, err := EvaluateSet(ctx, act, env, r.members, r.condition)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", r.name, err)
	}

	// A nested set where every member was skipped is itself skipped, keeping
	// it neutral in the outer set's accounting.
	allSkipped := len(set.Results) > 0
	for _, mr := range set.Results {
		if mr.Outcome != OutcomeSkipped {
			allSkipped = false
			break
		}
	}

	outcome := OutcomeNotTriggered
	switch {
	case allSkipped:
		outcome = OutcomeSkipped
	case set.Triggered:
		outcome = OutcomeTriggered
	}
	return r.result(outcome,
		fmt.Sprintf("%s set %s over %d member(s)", set.Condition, outcome, len(set.Results)),
		map[string]any{"set": set},
	), nil
}

// EvaluateSet runs an ordered member list under an AND/OR join with
// short-circuiting and tri-state accounting:
//
//   - a skipped member never affects the join;
//   - OR returns triggered on the first member that triggers;
//   - AND returns not-triggered on the first member that fails;
//   - if every member was skipped the set is not triggered;
//   - otherwise OR fails (nothing passed) and AND passes (nothing failed).
//
// Members whose fingerprint already ran in this evaluation pass reuse the
// prior result instead of re-running.
func EvaluateSet(ctx context.Context, act *activity.Activity, env *Env, members []Rule, condition filter.Condition) (*SetResult, error) {
	set := &SetResult{Condition: condition}
	ranAny := false

	for _, member := range members {
		res, ok := env.cached(member.Fingerprint())
		if ok {
			env.stats.Deduplicated++
			if env.Logger != nil {
				env.Logger.DebugContext(ctx, "reusing rule result",
					"rule", member.Name(),
					"fingerprint", member.Fingerprint()[:12],
				)
			}
		} else {
			var err error
			res, err = member.Eval(ctx, act, env)
			if err != nil {
				return nil, fmt.Errorf("evaluate rule %q: %w", member.Name(), err)
			}
			env.stats.Run++
			if res.Outcome == OutcomeTriggered {
				env.stats.Triggered++
			}
			env.remember(res)
		}

		set.Results = append(set.Results, res)

		if res.Outcome == OutcomeSkipped {
			continue
		}
		ranAny = true

		if condition == ConditionOR && res.Outcome == OutcomeTriggered {
			set.Triggered = true
			return set, nil
		}
		if condition == ConditionAND && res.Outcome == OutcomeNotTriggered {
			set.Triggered = false
			return set, nil
		}
	}

	if !ranAny {
		set.Triggered = false
		return set, nil
	}
	set.Triggered = condition == ConditionAND
	return set, nil
}

// Join condition aliases so callers of the evaluator do not need to import
// the filter package for the constants.
const (
	ConditionAND = filter.ConditionAND
	ConditionOR  = filter.ConditionOR
)
