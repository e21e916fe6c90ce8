// Package check implements the top-level evaluable unit: a filter gate, an
// ordered rule list under an AND/OR join, and the actions run on trigger,
// together with result caching and post-behavior resolution.
package check

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"modsieve/internal/action"
	"modsieve/internal/activity"
	"modsieve/internal/cache"
	"modsieve/internal/check/metrics"
	"modsieve/internal/criteria"
	"modsieve/internal/filter"
	"modsieve/internal/rule"
	"modsieve/pkg/platform/sentinel"
)

// CacheUserResult configures the per-author result cache of a check.
type CacheUserResult struct {
	Enable bool          `json:"enable"`
	TTL    time.Duration `json:"ttl,omitempty"`
	// RunActions, when false, suppresses action execution for a trigger
	// served from cache; the underlying trigger fact stays in the result.
	RunActions *bool `json:"runActions,omitempty"`
}

// Config is the declarative shape a check is built from. It is validated and
// compiled once by New; anything wrong with it is fatal before any activity
// is evaluated.
type Config struct {
	Name      string          `json:"name"`
	Enabled   *bool           `json:"enabled,omitempty"` // default true
	Condition string          `json:"condition,omitempty"`
	Rules     []rule.Config   `json:"rules,omitempty"`
	Actions   []action.Config `json:"actions,omitempty"`

	AuthorIs *filter.Options `json:"authorIs,omitempty"`
	ItemIs   *filter.Options `json:"itemIs,omitempty"`

	CacheUserResult *CacheUserResult `json:"cacheUserResult,omitempty"`

	PostTrigger         string   `json:"postTrigger,omitempty"`
	PostTriggerRecordTo []string `json:"postTriggerRecordTo,omitempty"`
	PostFail            string   `json:"postFail,omitempty"`
	PostFailRecordTo    []string `json:"postFailRecordTo,omitempty"`
}

// Deps are the collaborators a check evaluates through.
type Deps struct {
	Matcher   *criteria.Matcher
	Provider  activity.Provider
	Scorer    activity.ScoreProvider
	Moderator activity.Moderator
	Cache     cache.ResultCache
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// DefaultCacheTTL applies to checks that enable result caching without
	// setting their own TTL. Zero keeps such entries until evicted.
	DefaultCacheTTL time.Duration
}

// Check is immutable after construction and safe for concurrent Handle calls.
type Check struct {
	name        string
	enabled     bool
	condition   filter.Condition
	fingerprint string

	authorIs *filter.Options
	itemIs   *filter.Options
	rules    []rule.Rule
	actions  []action.Action

	cacheCfg    *CacheUserResult
	cacheTTL    time.Duration
	postTrigger Directive
	postFail    Directive

	deps Deps
}

// Options carries execution-scope settings into one Handle call.
type Options struct {
	DryRun bool
}

// Result is the outcome of one (check, activity) evaluation. It is mutated
// only while Handle runs and immutable once returned.
type Result struct {
	CheckName string `json:"checkName"`
	Triggered bool   `json:"triggered"`
	FromCache bool   `json:"fromCache"`
	// SuppressedTrigger preserves the underlying trigger fact when cache
	// policy forced Triggered to false for action purposes.
	SuppressedTrigger bool `json:"suppressedTrigger,omitempty"`

	AuthorGate *filter.Result `json:"authorGate,omitempty"`
	ItemGate   *filter.Result `json:"itemGate,omitempty"`

	Rules         *rule.SetResult  `json:"rules,omitempty"`
	ActionResults []*action.Result `json:"actionResults,omitempty"`

	PostBehavior Directive `json:"postBehavior"`
	Error        string    `json:"error,omitempty"`
	Summary      string    `json:"summary,omitempty"`
}

// ProcessingError is the typed failure Handle re-throws to the orchestrator
// for unexpected errors, carrying the best-available partial result.
type ProcessingError struct {
	Check   string
	Partial *Result
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("check %q processing failed: %v", e.Check, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// New validates, compiles and wires a check. Every configuration problem —
// unknown rule or action kind, bad pattern or comparison, unrecognized
// post-behavior — surfaces here, before any activity is evaluated.
func New(cfg Config, deps Deps) (*Check, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("check name is required")
	}
	if deps.Matcher == nil {
		return nil, fmt.Errorf("check %q: matcher is required", cfg.Name)
	}

	condition, err := filter.ParseCondition(cfg.Condition)
	if err != nil {
		return nil, fmt.Errorf("check %q: %w", cfg.Name, err)
	}
	if cfg.Condition == "" {
		condition = filter.ConditionAND
	}

	if err := cfg.AuthorIs.Compile(); err != nil {
		return nil, fmt.Errorf("check %q authorIs: %w", cfg.Name, err)
	}
	if err := cfg.ItemIs.Compile(); err != nil {
		return nil, fmt.Errorf("check %q itemIs: %w", cfg.Name, err)
	}

	rules := make([]rule.Rule, 0, len(cfg.Rules))
	for i, rc := range cfg.Rules {
		r, err := rule.New(rc)
		if err != nil {
			return nil, fmt.Errorf("check %q rule %d: %w", cfg.Name, i, err)
		}
		rules = append(rules, r)
	}

	actions := make([]action.Action, 0, len(cfg.Actions))
	for i, ac := range cfg.Actions {
		a, err := action.New(ac, deps.Moderator)
		if err != nil {
			return nil, fmt.Errorf("check %q action %d: %w", cfg.Name, i, err)
		}
		actions = append(actions, a)
	}

	postTrigger, err := ParseDirective(cfg.PostTrigger, cfg.PostTriggerRecordTo)
	if err != nil {
		return nil, fmt.Errorf("check %q postTrigger: %w", cfg.Name, err)
	}
	postFail, err := ParseDirective(cfg.PostFail, cfg.PostFailRecordTo)
	if err != nil {
		return nil, fmt.Errorf("check %q postFail: %w", cfg.Name, err)
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("check %q: fingerprint: %w", cfg.Name, err)
	}
	sum := sha256.Sum256(payload)

	enabled := cfg.Enabled == nil || *cfg.Enabled

	var cacheTTL time.Duration
	if cfg.CacheUserResult != nil {
		cacheTTL = cfg.CacheUserResult.TTL
		if cacheTTL == 0 {
			cacheTTL = deps.DefaultCacheTTL
		}
	}

	return &Check{
		name:        cfg.Name,
		enabled:     enabled,
		condition:   condition,
		fingerprint: hex.EncodeToString(sum[:]),
		authorIs:    cfg.AuthorIs,
		itemIs:      cfg.ItemIs,
		rules:       rules,
		actions:     actions,
		cacheCfg:    cfg.CacheUserResult,
		cacheTTL:    cacheTTL,
		postTrigger: postTrigger,
		postFail:    postFail,
		deps:        deps,
	}, nil
}

// Name returns the check's configured name.
func (c *Check) Name() string { return c.name }

// Directives returns the post-behavior directives, for run-level validation
// of goto targets and record destinations.
func (c *Check) Directives() (onTrigger, onFail Directive) {
	return c.postTrigger, c.postFail
}

// cachePayload is what a check stores per (author, check) pair.
type cachePayload struct {
	Triggered bool            `json:"triggered"`
	Rules     *rule.SetResult `json:"rules,omitempty"`
}

// Handle evaluates the check against one activity. It always returns a fully
// formed Result; a non-nil error is a ProcessingError for failures the check
// could not absorb. Metrics are flushed on every exit path.
func (c *Check) Handle(ctx context.Context, act *activity.Activity, opts Options) (result *Result, err error) {
	start := time.Now()
	snap := metrics.Snapshot{}
	var env *rule.Env

	result = &Result{CheckName: c.name, PostBehavior: c.postFail}

	// Registered first so it runs last: the metrics flush survives every
	// exit path, including the recover below.
	defer func() {
		if env != nil {
			stats := env.Stats()
			snap.RulesRun = stats.Run
			snap.RulesTriggered = stats.Triggered
			snap.RulesDeduplicated = stats.Deduplicated
		}
		c.deps.Metrics.Record(snap)
		c.deps.Metrics.ObserveHandleLatency(time.Since(start))
	}()
	defer func() {
		if r := recover(); r != nil {
			err = &ProcessingError{Check: c.name, Partial: result, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if !c.enabled {
		result.Summary = "not enabled"
		return result, nil
	}
	snap.ChecksRun = 1

	env = rule.NewEnv(c.deps.Matcher, c.deps.Provider, c.deps.Scorer, c.deps.Logger)

	triggered, fromCache := c.tryCache(ctx, act, result)
	if !fromCache {
		gatesPassed, gateErr := c.runGates(ctx, act, result)
		if gateErr != nil {
			result.Error = gateErr.Error()
			result.Summary = "filter gate failed to evaluate"
			return result, nil
		}
		if !gatesPassed {
			result.Summary = "filter gate did not pass"
			return result, nil
		}

		triggered, err = c.runRules(ctx, act, env, result)
		if err != nil {
			// Rule failure is absorbed: the result records the error and the
			// orchestrator keeps iterating.
			result.Error = err.Error()
			result.Summary = "rules failed"
			return result, nil
		}
		c.storeCache(ctx, act, result)
	} else {
		snap.ChecksFromCache = 1
	}

	if triggered && fromCache && c.cacheCfg != nil && c.cacheCfg.RunActions != nil && !*c.cacheCfg.RunActions {
		// Cache policy override: keep the trigger fact for audit but do not
		// act on it.
		triggered = false
		result.SuppressedTrigger = true
	}
	result.Triggered = triggered

	if !triggered {
		result.PostBehavior = c.postFail
		return result, nil
	}
	snap.ChecksTriggered = 1
	result.PostBehavior = c.postTrigger

	actionResults, actionErr := action.RunAll(ctx, c.actions, act, triggeredRuleResults(result.Rules), action.Options{DryRun: opts.DryRun})
	result.ActionResults = actionResults
	snap.ActionsRun = len(actionResults)
	if actionErr != nil {
		result.Error = actionErr.Error()
		result.Summary = "action execution failed"
		if c.deps.Logger != nil {
			c.deps.Logger.ErrorContext(ctx, "action execution failed",
				"check", c.name,
				"activity", act.ID,
				"completed_actions", len(actionResults),
				"error", actionErr,
			)
		}
		return result, nil
	}

	result.Summary = fmt.Sprintf("triggered, %d action(s) run", len(actionResults))
	return result, nil
}

// tryCache attempts the cache fast path. Any cache failure is logged and
// treated as a miss, never surfaced.
func (c *Check) tryCache(ctx context.Context, act *activity.Activity, result *Result) (triggered, hit bool) {
	if c.cacheCfg == nil || !c.cacheCfg.Enable || c.deps.Cache == nil {
		return false, false
	}

	key := c.cacheKey(act)
	raw, err := c.deps.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) && c.deps.Logger != nil {
			c.deps.Logger.WarnContext(ctx, "result cache fetch failed, treating as miss",
				"check", c.name, "error", err)
		}
		return false, false
	}

	var payload cachePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		if c.deps.Logger != nil {
			c.deps.Logger.WarnContext(ctx, "result cache entry undecodable, treating as miss",
				"check", c.name, "error", err)
		}
		return false, false
	}

	result.FromCache = true
	result.Rules = payload.Rules
	return payload.Triggered, true
}

// storeCache records the fresh outcome for future evaluations, best effort.
func (c *Check) storeCache(ctx context.Context, act *activity.Activity, result *Result) {
	if c.cacheCfg == nil || !c.cacheCfg.Enable || c.deps.Cache == nil {
		return
	}

	payload, err := json.Marshal(cachePayload{Triggered: result.Triggered, Rules: result.Rules})
	if err == nil {
		err = c.deps.Cache.Set(ctx, c.cacheKey(act), payload, c.cacheTTL)
	}
	if err != nil && c.deps.Logger != nil {
		c.deps.Logger.WarnContext(ctx, "result cache store failed",
			"check", c.name, "error", err)
	}
}

func (c *Check) cacheKey(act *activity.Activity) string {
	return cache.Key(act.AuthorName, c.fingerprint, act.Community)
}

// runGates evaluates the author gate then the item gate. Either failing means
// the check is not triggered, with no rules run and no error.
func (c *Check) runGates(ctx context.Context, act *activity.Activity, result *Result) (bool, error) {
	if !c.authorIs.Empty() {
		fr, err := filter.Evaluate(ctx, c.deps.Matcher, act, c.authorIs)
		if err != nil {
			return false, fmt.Errorf("author gate: %w", err)
		}
		result.AuthorGate = fr
		if !fr.Passed {
			return false, nil
		}
	}
	if !c.itemIs.Empty() {
		fr, err := filter.Evaluate(ctx, c.deps.Matcher, act, c.itemIs)
		if err != nil {
			return false, fmt.Errorf("item gate: %w", err)
		}
		result.ItemGate = fr
		if !fr.Passed {
			return false, nil
		}
	}
	return true, nil
}

// runRules evaluates the member list. A check with zero rules auto-passes:
// an empty rule list means "always act".
func (c *Check) runRules(ctx context.Context, act *activity.Activity, env *rule.Env, result *Result) (bool, error) {
	if len(c.rules) == 0 {
		result.Rules = &rule.SetResult{Triggered: true, Condition: c.condition}
		result.Triggered = true
		return true, nil
	}

	set, err := rule.EvaluateSet(ctx, act, env, c.rules, c.condition)
	if err != nil {
		return false, err
	}
	result.Rules = set
	result.Triggered = set.Triggered
	return set.Triggered, nil
}

// triggeredRuleResults selects the rule results actions receive: only the
// members that themselves triggered.
func triggeredRuleResults(set *rule.SetResult) []*rule.Result {
	if set == nil {
		return nil
	}
	out := make([]*rule.Result, 0, len(set.Results))
	for _, r := range set.Results {
		if r.Triggered() {
			out = append(out, r)
		}
	}
	return out
}
