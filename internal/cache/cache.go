// Package cache provides the result cache consumed by checks: a byte-valued
// TTL cache behind a small port, with in-memory and Redis implementations,
// plus the deterministic key construction shared by every caller.
package cache

//go:generate mockgen -source=cache.go -destination=mocks/mocks.go -package=mocks ResultCache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ResultCache is the port checks store and fetch evaluation results through.
// Get returns sentinel.ErrNotFound (possibly wrapped) on a miss; any other
// error is a cache failure the caller must treat as a miss, not a fault.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key builds a deterministic cache key from its parts, e.g.
// {authorName, checkFingerprint, scope}. Identical parts always produce the
// identical key so concurrent evaluators converge on the same entries.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "modsieve:result:" + hex.EncodeToString(sum[:])
}
