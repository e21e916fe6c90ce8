// Package criteria implements the declarative predicate bundles tested against
// an activity or its author, and the matcher that evaluates them property by
// property with a full audit trail.
package criteria

import (
	"context"
	"fmt"

	"modsieve/internal/activity"
)

// PropertyResult records the outcome of testing one declared property.
// Passed is nil when the property does not apply to the activity (for example
// a post-only property tested on a comment); such results are excluded from
// the overall conjunction.
type PropertyResult struct {
	Property string `json:"property"`
	Found    bool   `json:"found"`
	Passed   *bool  `json:"passed"`
	Reason   string `json:"reason,omitempty"`
}

// Result is the full outcome of evaluating one criteria bundle: the logical
// AND of all applicable property results. Vacuous flags a bundle where no
// property applied; it passes by default but is surfaced for debugging.
type Result struct {
	Criteria   string           `json:"criteria,omitempty"`
	Properties []PropertyResult `json:"properties"`
	Passed     bool             `json:"passed"`
	Vacuous    bool             `json:"vacuous,omitempty"`
}

// Set is one evaluable criteria bundle. Implemented by Item and Author.
type Set interface {
	// Label returns the optional display name for audit output.
	Label() string
	// Compile validates and precompiles declared expressions. Called once at
	// configuration-build time; a failure is a configuration error.
	Compile() error
	// Match evaluates the bundle against one activity.
	Match(ctx context.Context, m *Matcher, act *activity.Activity) (*Result, error)
}

// Item tests observable attributes of the activity itself. All attributes are
// local to the snapshot; no remote fetch is needed.
type Item struct {
	Name string `json:"name,omitempty"`

	Removed       *bool `json:"removed,omitempty"`
	Filtered      *bool `json:"filtered,omitempty"`
	Deleted       *bool `json:"deleted,omitempty"`
	Approved      *bool `json:"approved,omitempty"`
	Locked        *bool `json:"locked,omitempty"`
	Stickied      *bool `json:"stickied,omitempty"`
	Distinguished *bool `json:"distinguished,omitempty"`

	Score   string `json:"score,omitempty"`   // comparison, e.g. "< 1"
	Reports string `json:"reports,omitempty"` // comparison, e.g. ">= 2"
	Age     string `json:"age,omitempty"`     // comparison, e.g. "> 2 days"

	Title *MatchSpec `json:"title,omitempty"` // posts only
	Flair *MatchSpec `json:"flair,omitempty"`

	score   *Comparison
	reports *Comparison
	age     *Comparison
}

// Label implements Set.
func (c *Item) Label() string { return c.Name }

// Compile implements Set.
func (c *Item) Compile() error {
	var err error
	if c.Score != "" {
		if c.score, err = ParseComparison(c.Score); err != nil {
			return fmt.Errorf("item criteria score: %w", err)
		}
	}
	if c.Reports != "" {
		if c.reports, err = ParseComparison(c.Reports); err != nil {
			return fmt.Errorf("item criteria reports: %w", err)
		}
	}
	if c.Age != "" {
		if c.age, err = ParseComparison(c.Age); err != nil {
			return fmt.Errorf("item criteria age: %w", err)
		}
	}
	if c.Title != nil {
		c.Title.Substring = true
		if err = c.Title.Compile(); err != nil {
			return fmt.Errorf("item criteria title: %w", err)
		}
	}
	if c.Flair != nil {
		if err = c.Flair.Compile(); err != nil {
			return fmt.Errorf("item criteria flair: %w", err)
		}
	}
	return nil
}

// Match implements Set.
func (c *Item) Match(ctx context.Context, m *Matcher, act *activity.Activity) (*Result, error) {
	return m.MatchItem(ctx, act, c)
}

// Author tests attributes of the activity's author. The username is available
// on the activity itself; every other attribute needs the profile record,
// which the matcher fetches at most once per bundle.
type Author struct {
	Name string `json:"name,omitempty"`

	Names       *MatchSpec `json:"names,omitempty"`
	FlairText   *MatchSpec `json:"flairText,omitempty"`
	FlairCSS    *MatchSpec `json:"flairCss,omitempty"`
	Description *MatchSpec `json:"description,omitempty"`

	Moderator    *bool `json:"moderator,omitempty"`
	Verified     *bool `json:"verified,omitempty"`
	ShadowBanned *bool `json:"shadowBanned,omitempty"`

	AccountAge   string `json:"accountAge,omitempty"`   // comparison, e.g. "< 7 days"
	LinkKarma    string `json:"linkKarma,omitempty"`    // comparison
	CommentKarma string `json:"commentKarma,omitempty"` // comparison

	accountAge   *Comparison
	linkKarma    *Comparison
	commentKarma *Comparison
}

// Label implements Set.
func (c *Author) Label() string { return c.Name }

// Compile implements Set.
func (c *Author) Compile() error {
	var err error
	if c.AccountAge != "" {
		if c.accountAge, err = ParseComparison(c.AccountAge); err != nil {
			return fmt.Errorf("author criteria accountAge: %w", err)
		}
	}
	if c.LinkKarma != "" {
		if c.linkKarma, err = ParseComparison(c.LinkKarma); err != nil {
			return fmt.Errorf("author criteria linkKarma: %w", err)
		}
	}
	if c.CommentKarma != "" {
		if c.commentKarma, err = ParseComparison(c.CommentKarma); err != nil {
			return fmt.Errorf("author criteria commentKarma: %w", err)
		}
	}
	for name, spec := range map[string]*MatchSpec{
		"names":       c.Names,
		"flairText":   c.FlairText,
		"flairCss":    c.FlairCSS,
		"description": c.Description,
	} {
		if spec == nil {
			continue
		}
		if name == "description" {
			spec.Substring = true
		}
		if err = spec.Compile(); err != nil {
			return fmt.Errorf("author criteria %s: %w", name, err)
		}
	}
	return nil
}

// Match implements Set.
func (c *Author) Match(ctx context.Context, m *Matcher, act *activity.Activity) (*Result, error) {
	return m.MatchAuthor(ctx, act, c)
}

// needsProfile reports whether any declared property requires the fetched
// author record, as opposed to the username already on the activity.
func (c *Author) needsProfile() bool {
	return !c.FlairText.Empty() || !c.FlairCSS.Empty() || !c.Description.Empty() ||
		c.Moderator != nil || c.Verified != nil || c.ShadowBanned != nil ||
		c.AccountAge != "" || c.LinkKarma != "" || c.CommentKarma != ""
}
