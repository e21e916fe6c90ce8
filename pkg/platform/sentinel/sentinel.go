package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Caches, stores and platform
// clients return these (optionally wrapped) so the engine can distinguish
// "missing" from "broken" without string matching.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entry does not exist in the cache or store
// - ErrExpired: cached entry exists but its TTL has elapsed
// - ErrUnavailable: backing service temporarily unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
