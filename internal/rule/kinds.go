package rule

import (
	"fmt"

	"modsieve/internal/filter"
)

// Kind selects a concrete rule behavior. The set is closed: New is the only
// constructor and it rejects anything outside this list.
type Kind string

const (
	KindAuthor    Kind = "author"
	KindRegex     Kind = "regex"
	KindRecent    Kind = "recent"
	KindRepeat    Kind = "repeat"
	KindSentiment Kind = "sentiment"
	KindRuleSet   Kind = "ruleset"
)

// Config is the declarative shape a rule is built from. Exactly one of the
// kind-specific sections must be set, matching Kind.
type Config struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name,omitempty"`

	// Per-rule gates; a failing gate skips the rule rather than failing it.
	AuthorIs *filter.Options `json:"authorIs,omitempty"`
	ItemIs   *filter.Options `json:"itemIs,omitempty"`

	Author    *AuthorConfig    `json:"author,omitempty"`
	Regex     *RegexConfig     `json:"regex,omitempty"`
	Recent    *RecentConfig    `json:"recent,omitempty"`
	Repeat    *RepeatConfig    `json:"repeat,omitempty"`
	Sentiment *SentimentConfig `json:"sentiment,omitempty"`
	RuleSet   *RuleSetConfig   `json:"ruleset,omitempty"`
}

// New builds a rule from its configuration. Unknown kinds and mismatched
// kind sections are configuration errors.
func New(cfg Config) (Rule, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case KindAuthor:
		if cfg.Author == nil {
			return nil, fmt.Errorf("rule %q: author section is required", cfg.Name)
		}
		return newAuthorRule(b, cfg.Author)
	case KindRegex:
		if cfg.Regex == nil {
			return nil, fmt.Errorf("rule %q: regex section is required", cfg.Name)
		}
		return newRegexRule(b, cfg.Regex)
	case KindRecent:
		if cfg.Recent == nil {
			return nil, fmt.Errorf("rule %q: recent section is required", cfg.Name)
		}
		return newRecentRule(b, cfg.Recent)
	case KindRepeat:
		if cfg.Repeat == nil {
			return nil, fmt.Errorf("rule %q: repeat section is required", cfg.Name)
		}
		return newRepeatRule(b, cfg.Repeat)
	case KindSentiment:
		if cfg.Sentiment == nil {
			return nil, fmt.Errorf("rule %q: sentiment section is required", cfg.Name)
		}
		return newSentimentRule(b, cfg.Sentiment)
	case KindRuleSet:
		if cfg.RuleSet == nil {
			return nil, fmt.Errorf("rule %q: ruleset section is required", cfg.Name)
		}
		return newRuleSetRule(b, cfg.RuleSet)
	}
	return nil, fmt.Errorf("unknown rule kind %q", cfg.Kind)
}

func newBase(cfg Config) (base, error) {
	if err := cfg.AuthorIs.Compile(); err != nil {
		return base{}, fmt.Errorf("rule %q authorIs: %w", cfg.Name, err)
	}
	if err := cfg.ItemIs.Compile(); err != nil {
		return base{}, fmt.Errorf("rule %q itemIs: %w", cfg.Name, err)
	}

	// The fingerprint covers the full premise including gates, so only rules
	// that would behave identically share one.
	premise := cfg
	premise.Name = ""
	fp, err := fingerprintConfig(cfg.Kind, premise)
	if err != nil {
		return base{}, err
	}

	name := cfg.Name
	if name == "" {
		name = string(cfg.Kind)
	}
	return base{
		name:        name,
		kind:        cfg.Kind,
		fingerprint: fp,
		authorIs:    cfg.AuthorIs,
		itemIs:      cfg.ItemIs,
	}, nil
}
