package action

import (
	"context"
	"fmt"
	"strings"

	"modsieve/internal/activity"
	"modsieve/internal/rule"
)

// Config is the declarative shape an action is built from.
type Config struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name,omitempty"`
	// DryRun pins this action's dry-run setting; when nil the action inherits
	// the execution-scope setting.
	DryRun *bool `json:"dryRun,omitempty"`

	Comment *CommentConfig `json:"comment,omitempty"`
	Flair   *FlairConfig   `json:"flair,omitempty"`
	Report  *ReportConfig  `json:"report,omitempty"`
}

// CommentConfig configures a reply left on the triggering activity.
type CommentConfig struct {
	Body   string `json:"body"`
	Sticky bool   `json:"sticky,omitempty"`
}

// FlairConfig configures the flair set on the triggering activity.
type FlairConfig struct {
	Text string `json:"text"`
	CSS  string `json:"css,omitempty"`
}

// ReportConfig configures the report filed against the activity.
type ReportConfig struct {
	Reason string `json:"reason"`
}

// New builds an action from its configuration. Unknown kinds and missing
// kind sections are configuration errors.
func New(cfg Config, mod activity.Moderator) (Action, error) {
	if mod == nil {
		return nil, fmt.Errorf("action %q: moderator client is required", cfg.Name)
	}

	b := baseAction{
		name:   cfg.Name,
		kind:   cfg.Kind,
		dryRun: cfg.DryRun,
		mod:    mod,
	}
	if b.name == "" {
		b.name = string(cfg.Kind)
	}

	switch cfg.Kind {
	case KindApprove, KindLock, KindRemove:
		return &simpleAction{baseAction: b}, nil
	case KindComment:
		if cfg.Comment == nil || cfg.Comment.Body == "" {
			return nil, fmt.Errorf("action %q: comment body is required", b.name)
		}
		return &commentAction{baseAction: b, cfg: *cfg.Comment}, nil
	case KindFlair:
		if cfg.Flair == nil {
			return nil, fmt.Errorf("action %q: flair section is required", b.name)
		}
		return &flairAction{baseAction: b, cfg: *cfg.Flair}, nil
	case KindReport:
		if cfg.Report == nil || cfg.Report.Reason == "" {
			return nil, fmt.Errorf("action %q: report reason is required", b.name)
		}
		return &reportAction{baseAction: b, cfg: *cfg.Report}, nil
	}
	return nil, fmt.Errorf("unknown action kind %q", cfg.Kind)
}

type baseAction struct {
	name   string
	kind   Kind
	dryRun *bool
	mod    activity.Moderator
}

func (b *baseAction) Name() string { return b.name }
func (b *baseAction) Kind() Kind   { return b.kind }

// effectiveDryRun resolves the action-scope override against the run options.
func (b *baseAction) effectiveDryRun(opts Options) bool {
	if b.dryRun != nil {
		return *b.dryRun
	}
	return opts.DryRun
}

// newResult seeds a result with the run reason derived from the triggering
// rules, so every action's audit entry names what caused it.
func (b *baseAction) newResult(triggered []*rule.Result, opts Options) *Result {
	names := make([]string, 0, len(triggered))
	for _, r := range triggered {
		names = append(names, r.RuleName)
	}
	return &Result{
		ActionName: b.name,
		Kind:       b.kind,
		DryRun:     b.effectiveDryRun(opts),
		RunReason:  "triggered by " + strings.Join(names, ", "),
	}
}

// run executes the side effect unless this is a dry run, and fills the
// bookkeeping fields either way.
func (b *baseAction) run(res *Result, detail string, effect func() error) (*Result, error) {
	res.Detail = detail
	if res.DryRun {
		res.Ran = false
		res.Success = true
		return res, nil
	}
	res.Ran = true
	if err := effect(); err != nil {
		res.Success = false
		return res, fmt.Errorf("%s: %w", b.kind, err)
	}
	res.Success = true
	return res, nil
}

// simpleAction covers the kinds with no configuration: approve, lock, remove.
type simpleAction struct {
	baseAction
}

func (a *simpleAction) Run(ctx context.Context, act *activity.Activity, triggered []*rule.Result, _ []*Result, opts Options) (*Result, error) {
	res := a.newResult(triggered, opts)
	return a.run(res, string(a.kind)+" "+act.ID, func() error {
		switch a.kind {
		case KindApprove:
			return a.mod.Approve(ctx, act.ID)
		case KindLock:
			return a.mod.Lock(ctx, act.ID)
		case KindRemove:
			return a.mod.Remove(ctx, act.ID)
		}
		return fmt.Errorf("unreachable action kind %q", a.kind)
	})
}

type commentAction struct {
	baseAction
	cfg CommentConfig
}

func (a *commentAction) Run(ctx context.Context, act *activity.Activity, triggered []*rule.Result, _ []*Result, opts Options) (*Result, error) {
	res := a.newResult(triggered, opts)
	return a.run(res, fmt.Sprintf("reply %d chars, sticky=%t", len(a.cfg.Body), a.cfg.Sticky), func() error {
		return a.mod.Reply(ctx, act.ID, a.cfg.Body, a.cfg.Sticky)
	})
}

type flairAction struct {
	baseAction
	cfg FlairConfig
}

func (a *flairAction) Run(ctx context.Context, act *activity.Activity, triggered []*rule.Result, _ []*Result, opts Options) (*Result, error) {
	res := a.newResult(triggered, opts)
	return a.run(res, fmt.Sprintf("flair %q", a.cfg.Text), func() error {
		return a.mod.SetFlair(ctx, act.ID, a.cfg.Text, a.cfg.CSS)
	})
}

type reportAction struct {
	baseAction
	cfg ReportConfig
}

func (a *reportAction) Run(ctx context.Context, act *activity.Activity, triggered []*rule.Result, _ []*Result, opts Options) (*Result, error) {
	res := a.newResult(triggered, opts)
	return a.run(res, fmt.Sprintf("report %q", a.cfg.Reason), func() error {
		return a.mod.Report(ctx, act.ID, a.cfg.Reason)
	})
}
