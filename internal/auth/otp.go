package auth

import (
	"context"
	"sync"
	"time"
)

// Entry describes a stored one-time code for diagnostics. The raw code is
// never included.
type Entry struct {
	Identifier string    `json:"identifier"`
	ExpiresAt  time.Time `json:"expires_at"`
	Attempts   int       `json:"attempts"`
}

// Store is a time-boxed, single-use secret store for one-time login codes.
// A successful verification consumes the entry immediately; a mismatch keeps
// it so the user can retry within the TTL.
type Store interface {
	Put(ctx context.Context, identifier, code string, ttl time.Duration) error
	Verify(ctx context.Context, identifier, code string) (bool, error)
	Peek(ctx context.Context, identifier string) (*Entry, error)
}

type memoryEntry struct {
	code     string
	expires  time.Time
	attempts int
}

// MemoryStore is the in-memory Store used in development and tests. A single
// mutex serializes put/verify per the low expected volume; the clock is
// injectable for deterministic expiry tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]*memoryEntry), now: now}
}

// Put stores or overwrites the code for an identifier.
func (s *MemoryStore) Put(_ context.Context, identifier, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[identifier] = &memoryEntry{code: code, expires: s.now().Add(ttl)}
	return nil
}

// Verify checks a code. Expired entries are deleted lazily; a match consumes
// the entry; a mismatch keeps it and counts the attempt.
func (s *MemoryStore) Verify(_ context.Context, identifier, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[identifier]
	if !ok {
		return false, nil
	}
	if s.now().After(entry.expires) {
		delete(s.entries, identifier)
		return false, nil
	}
	if entry.code != code {
		entry.attempts++
		return false, nil
	}
	delete(s.entries, identifier)
	return true, nil
}

// Peek reads entry metadata without consuming it.
func (s *MemoryStore) Peek(_ context.Context, identifier string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[identifier]
	if !ok {
		return nil, nil
	}
	return &Entry{Identifier: identifier, ExpiresAt: entry.expires, Attempts: entry.attempts}, nil
}
