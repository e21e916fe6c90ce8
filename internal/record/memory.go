package record

import (
	"context"
	"sync"
)

// MemorySink keeps the most recent entries in a fixed-size ring so the HTTP
// API can serve "recent results" without a persistence layer.
type MemorySink struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewMemorySink creates a ring holding up to capacity entries.
func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemorySink{entries: make([]Entry, capacity)}
}

// Record implements Sink.
func (s *MemorySink) Record(_ context.Context, entry Entry) error {
	s.mu.Lock()
	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	s.mu.Unlock()
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *MemorySink) Recent(limit int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = len(s.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out
}

// Close implements Sink.
func (s *MemorySink) Close() error { return nil }
