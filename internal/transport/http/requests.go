package httptransport

import (
	"fmt"
	"strings"
	"time"

	"modsieve/internal/activity"
)

// EvaluateRequest is the HTTP request body for POST /evaluate: one activity
// snapshot to run the configured suite against.
type EvaluateRequest struct {
	Activity ActivityPayload `json:"activity"`
	// Author optionally carries the author's profile alongside the activity
	// for deployments where the server has no other profile source.
	Author *AuthorPayload `json:"author,omitempty"`
}

// AuthorPayload is the wire shape of an author profile.
type AuthorPayload struct {
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	LinkKarma    int       `json:"linkKarma,omitempty"`
	CommentKarma int       `json:"commentKarma,omitempty"`
	Verified     bool      `json:"verified,omitempty"`
	Moderator    bool      `json:"moderator,omitempty"`
	ShadowBanned bool      `json:"shadowBanned,omitempty"`
	FlairText    string    `json:"flairText,omitempty"`
	FlairCSS     string    `json:"flairCss,omitempty"`
	Description  string    `json:"description,omitempty"`
}

// ActivityPayload is the wire shape of an activity snapshot.
type ActivityPayload struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Community  string `json:"community"`
	AuthorName string `json:"authorName"`

	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	URL   string `json:"url,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	Score     int       `json:"score,omitempty"`
	Reports   int       `json:"reports,omitempty"`

	Removed       bool `json:"removed,omitempty"`
	Filtered      bool `json:"filtered,omitempty"`
	Deleted       bool `json:"deleted,omitempty"`
	Locked        bool `json:"locked,omitempty"`
	Stickied      bool `json:"stickied,omitempty"`
	Distinguished bool `json:"distinguished,omitempty"`
	Approved      bool `json:"approved,omitempty"`

	FlairText string `json:"flairText,omitempty"`
	FlairCSS  string `json:"flairCss,omitempty"`
}

// Validate checks the request and reports the first problem found.
func (r *EvaluateRequest) Validate() error {
	a := &r.Activity
	a.ID = strings.TrimSpace(a.ID)
	a.AuthorName = strings.TrimSpace(a.AuthorName)

	if a.ID == "" {
		return fmt.Errorf("activity.id is required")
	}
	if a.AuthorName == "" {
		return fmt.Errorf("activity.authorName is required")
	}
	switch activity.Kind(a.Kind) {
	case activity.KindPost, activity.KindComment:
	default:
		return fmt.Errorf("activity.kind must be %q or %q", activity.KindPost, activity.KindComment)
	}
	if a.CreatedAt.IsZero() {
		return fmt.Errorf("activity.createdAt is required")
	}
	if r.Author != nil {
		r.Author.Name = strings.TrimSpace(r.Author.Name)
		if r.Author.Name == "" {
			r.Author.Name = a.AuthorName
		}
	}
	return nil
}

// ToAuthor converts the optional author payload to the domain model, or nil.
func (r *EvaluateRequest) ToAuthor() *activity.Author {
	if r.Author == nil {
		return nil
	}
	p := r.Author
	return &activity.Author{
		Name:         p.Name,
		CreatedAt:    p.CreatedAt,
		LinkKarma:    p.LinkKarma,
		CommentKarma: p.CommentKarma,
		Verified:     p.Verified,
		Moderator:    p.Moderator,
		ShadowBanned: p.ShadowBanned,
		FlairText:    p.FlairText,
		FlairCSS:     p.FlairCSS,
		Description:  p.Description,
	}
}

// ToActivity converts the validated payload to the domain model.
func (r *EvaluateRequest) ToActivity() *activity.Activity {
	a := r.Activity
	return &activity.Activity{
		ID:            a.ID,
		Kind:          activity.Kind(a.Kind),
		Community:     a.Community,
		AuthorName:    a.AuthorName,
		Title:         a.Title,
		Body:          a.Body,
		URL:           a.URL,
		CreatedAt:     a.CreatedAt,
		Score:         a.Score,
		Reports:       a.Reports,
		Removed:       a.Removed,
		Filtered:      a.Filtered,
		Deleted:       a.Deleted,
		Locked:        a.Locked,
		Stickied:      a.Stickied,
		Distinguished: a.Distinguished,
		Approved:      a.Approved,
		FlairText:     a.FlairText,
		FlairCSS:      a.FlairCSS,
	}
}
