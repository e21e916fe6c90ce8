package criteria

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"modsieve/internal/activity"
)

// Matcher evaluates criteria bundles against activities. It owns the ordering
// policy: local attributes are tested before any that require a profile fetch,
// so a failing cheap property never pays for a remote lookup.
type Matcher struct {
	provider activity.Provider
	logger   *slog.Logger
	now      func() time.Time
}

// MatcherOption customizes a Matcher.
type MatcherOption func(*Matcher)

// WithLogger attaches a logger for fetch diagnostics.
func WithLogger(logger *slog.Logger) MatcherOption {
	return func(m *Matcher) { m.logger = logger }
}

// WithClock overrides the time source; tests pin it for age comparisons.
func WithClock(now func() time.Time) MatcherOption {
	return func(m *Matcher) { m.now = now }
}

// NewMatcher builds a matcher over the given activity provider.
func NewMatcher(provider activity.Provider, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		provider: provider,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// propertyTest is one declared property plus how to test it. apply returning a
// nil Passed marks the property "not applicable" for this activity.
type propertyTest struct {
	name  string
	apply func() PropertyResult
}

// MatchItem evaluates item criteria. Properties are tested in a fixed order:
// removal state first, then numeric attributes, then text attributes.
func (m *Matcher) MatchItem(_ context.Context, act *activity.Activity, c *Item) (*Result, error) {
	now := m.now()

	tests := []propertyTest{
		boolTest("removed", c.Removed, act.Removed),
		boolTest("filtered", c.Filtered, act.Filtered),
		boolTest("deleted", c.Deleted, act.Deleted),
		boolTest("approved", c.Approved, act.Approved),
		boolTest("locked", c.Locked, act.Locked),
		boolTest("stickied", c.Stickied, act.Stickied),
		boolTest("distinguished", c.Distinguished, act.Distinguished),
		compareTest("score", c.score, func(cmp *Comparison) (bool, string) {
			return cmp.CompareInt(act.Score), fmt.Sprintf("score %d vs %s", act.Score, cmp)
		}),
		compareTest("reports", c.reports, func(cmp *Comparison) (bool, string) {
			return cmp.CompareInt(act.Reports), fmt.Sprintf("reports %d vs %s", act.Reports, cmp)
		}),
		compareTest("age", c.age, func(cmp *Comparison) (bool, string) {
			age := act.Age(now)
			return cmp.CompareDuration(age), fmt.Sprintf("age %s vs %s", age.Round(time.Second), cmp)
		}),
		{name: "title", apply: func() PropertyResult {
			if c.Title.Empty() {
				return skipProperty("title")
			}
			if !act.IsPost() {
				return notApplicable("title", "title only applies to posts")
			}
			return matchProperty("title", c.Title, act.Title)
		}},
		{name: "flair", apply: func() PropertyResult {
			if c.Flair.Empty() {
				return skipProperty("flair")
			}
			return matchProperty("flair", c.Flair, act.FlairText)
		}},
	}

	return collect(c.Name, tests), nil
}

// MatchAuthor evaluates author criteria. The username test runs first since it
// needs no fetch; the profile record is fetched once only when a declared
// property needs it.
func (m *Matcher) MatchAuthor(ctx context.Context, act *activity.Activity, c *Author) (*Result, error) {
	tests := []propertyTest{
		{name: "names", apply: func() PropertyResult {
			if c.Names.Empty() {
				return skipProperty("names")
			}
			return matchProperty("names", c.Names, act.AuthorName)
		}},
	}

	if c.needsProfile() {
		author, err := m.provider.Author(ctx, act.AuthorName)
		if err != nil {
			return nil, fmt.Errorf("fetch author %q: %w", act.AuthorName, err)
		}
		if m.logger != nil {
			m.logger.DebugContext(ctx, "fetched author profile", "author", act.AuthorName)
		}
		now := m.now()
		tests = append(tests,
			propertyTest{name: "flairText", apply: func() PropertyResult {
				if c.FlairText.Empty() {
					return skipProperty("flairText")
				}
				return matchProperty("flairText", c.FlairText, author.FlairText)
			}},
			propertyTest{name: "flairCss", apply: func() PropertyResult {
				if c.FlairCSS.Empty() {
					return skipProperty("flairCss")
				}
				return matchProperty("flairCss", c.FlairCSS, author.FlairCSS)
			}},
			boolTest("moderator", c.Moderator, author.Moderator),
			boolTest("verified", c.Verified, author.Verified),
			boolTest("shadowBanned", c.ShadowBanned, author.ShadowBanned),
			compareTest("accountAge", c.accountAge, func(cmp *Comparison) (bool, string) {
				age := author.AgeAt(now)
				return cmp.CompareDuration(age), fmt.Sprintf("account age %s vs %s", age.Round(time.Hour), cmp)
			}),
			compareTest("linkKarma", c.linkKarma, func(cmp *Comparison) (bool, string) {
				return cmp.CompareInt(author.LinkKarma), fmt.Sprintf("link karma %d vs %s", author.LinkKarma, cmp)
			}),
			compareTest("commentKarma", c.commentKarma, func(cmp *Comparison) (bool, string) {
				return cmp.CompareInt(author.CommentKarma), fmt.Sprintf("comment karma %d vs %s", author.CommentKarma, cmp)
			}),
			propertyTest{name: "description", apply: func() PropertyResult {
				if c.Description.Empty() {
					return skipProperty("description")
				}
				return matchProperty("description", c.Description, author.Description)
			}},
		)
	}

	return collect(c.Name, tests), nil
}

// collect runs the property tests in order, keeps every applicable result, and
// folds them into the bundle outcome: the AND of all non-nil Passed values. A
// bundle with zero applicable properties passes vacuously and is flagged.
func collect(label string, tests []propertyTest) *Result {
	res := &Result{Criteria: label, Passed: true}
	applicable := 0
	for _, t := range tests {
		pr := t.apply()
		if pr.Property == "" {
			continue // property not declared
		}
		res.Properties = append(res.Properties, pr)
		if pr.Passed == nil {
			continue
		}
		applicable++
		if !*pr.Passed {
			res.Passed = false
		}
	}
	if applicable == 0 {
		res.Vacuous = true
	}
	return res
}

func boolTest(name string, expected *bool, actual bool) propertyTest {
	return propertyTest{name: name, apply: func() PropertyResult {
		if expected == nil {
			return skipProperty(name)
		}
		passed := actual == *expected
		return PropertyResult{
			Property: name,
			Found:    true,
			Passed:   &passed,
			Reason:   fmt.Sprintf("%s=%t, expected %t", name, actual, *expected),
		}
	}}
}

func compareTest(name string, cmp *Comparison, eval func(*Comparison) (bool, string)) propertyTest {
	return propertyTest{name: name, apply: func() PropertyResult {
		if cmp == nil {
			return skipProperty(name)
		}
		passed, reason := eval(cmp)
		return PropertyResult{Property: name, Found: true, Passed: &passed, Reason: reason}
	}}
}

func matchProperty(name string, spec *MatchSpec, value string) PropertyResult {
	passed, reason := spec.Match(value)
	return PropertyResult{Property: name, Found: value != "", Passed: &passed, Reason: reason}
}

// skipProperty marks an undeclared property; collect drops it entirely.
func skipProperty(string) PropertyResult { return PropertyResult{} }

// notApplicable records a declared property that cannot be tested on this
// activity; it stays in the audit trail but does not affect the outcome.
func notApplicable(name, reason string) PropertyResult {
	return PropertyResult{Property: name, Found: false, Passed: nil, Reason: reason}
}
