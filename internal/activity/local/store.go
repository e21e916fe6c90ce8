// Package local provides in-process implementations of the activity ports for
// deployments without a platform client: a history store fed by submitted
// activities, a moderator that records intent in the log, and a scorer that
// reports every score unusable so sentiment rules skip.
package local

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"modsieve/internal/activity"
	"modsieve/pkg/platform/sentinel"
)

// Store keeps authors and their activities in memory, newest first. It serves
// author-history rules from whatever the server has seen so far.
type Store struct {
	mu         sync.RWMutex
	authors    map[string]*activity.Author
	activities map[string][]*activity.Activity
	maxPerUser int
}

// NewStore creates a store capping history at maxPerUser activities per
// author; zero or negative means the default of 1000.
func NewStore(maxPerUser int) *Store {
	if maxPerUser <= 0 {
		maxPerUser = 1000
	}
	return &Store{
		authors:    make(map[string]*activity.Author),
		activities: make(map[string][]*activity.Activity),
		maxPerUser: maxPerUser,
	}
}

// PutAuthor registers or replaces an author profile.
func (s *Store) PutAuthor(author *activity.Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *author
	s.authors[strings.ToLower(author.Name)] = &cp
}

// Observe records an activity into its author's history so repeat and recent
// rules see it in later evaluations. The server calls it after a successful
// evaluation; the activity under evaluation is counted by the rules
// themselves, not through history.
func (s *Store) Observe(act *activity.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(act.AuthorName)
	cp := *act
	history := append(s.activities[key], &cp)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})
	if len(history) > s.maxPerUser {
		history = history[:s.maxPerUser]
	}
	s.activities[key] = history
}

// Author implements activity.Provider. Unknown authors return
// sentinel.ErrNotFound.
func (s *Store) Author(_ context.Context, name string) (*activity.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	author, ok := s.authors[strings.ToLower(name)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *author
	return &cp, nil
}

// AuthorActivities implements activity.Provider.
func (s *Store) AuthorActivities(_ context.Context, name string, window activity.HistoryWindow) ([]*activity.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cutoff time.Time
	if window.Duration > 0 {
		cutoff = time.Now().Add(-window.Duration)
	}
	communities := make(map[string]bool, len(window.Communities))
	for _, c := range window.Communities {
		communities[strings.ToLower(c)] = true
	}

	var out []*activity.Activity
	for _, act := range s.activities[strings.ToLower(name)] {
		if !cutoff.IsZero() && act.CreatedAt.Before(cutoff) {
			// History is newest first; everything after is older still.
			break
		}
		if window.Kind != "" && act.Kind != window.Kind {
			continue
		}
		if len(communities) > 0 && !communities[strings.ToLower(act.Community)] {
			continue
		}
		cp := *act
		out = append(out, &cp)
		if window.Count > 0 && len(out) >= window.Count {
			break
		}
	}
	return out, nil
}
