// Package activity defines the content items evaluated by the engine and the
// ports to the platform that supplies them. Activities are immutable snapshots;
// the engine never writes back through this package.
package activity

import "time"

// Kind distinguishes the two evaluable content types.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// Activity is one content item (post or comment) under evaluation. Fields are
// populated by the platform client before evaluation starts and treated as
// read-only afterwards.
type Activity struct {
	ID        string
	Kind      Kind
	Community string
	// AuthorName references the author; the full Author record is fetched
	// separately because it is a remote lookup.
	AuthorName string

	Title string // posts only
	Body  string
	URL   string // link posts only

	CreatedAt time.Time
	Score     int
	Reports   int

	Removed       bool
	Filtered      bool
	Deleted       bool
	Locked        bool
	Stickied      bool
	Distinguished bool
	Approved      bool

	FlairText string
	FlairCSS  string
}

// Age returns how long ago the activity was created, relative to now.
func (a *Activity) Age(now time.Time) time.Duration {
	return now.Sub(a.CreatedAt)
}

// Content returns the text a content rule should match against: comments have
// only a body, posts match on title plus self-text.
func (a *Activity) Content() string {
	if a.Kind == KindComment {
		return a.Body
	}
	if a.Body == "" {
		return a.Title
	}
	return a.Title + "\n" + a.Body
}

// IsPost reports whether the activity is a post (submission).
func (a *Activity) IsPost() bool {
	return a.Kind == KindPost
}

// Author is the profile record behind an activity, fetched on demand.
type Author struct {
	Name         string
	CreatedAt    time.Time
	LinkKarma    int
	CommentKarma int
	Verified     bool
	Moderator    bool
	ShadowBanned bool
	FlairText    string
	FlairCSS     string
	Description  string
}

// AgeAt returns the account age relative to now.
func (a *Author) AgeAt(now time.Time) time.Duration {
	return now.Sub(a.CreatedAt)
}
