// Package sessionstore persists page sessions in process memory or in Redis.
package sessionstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/colormuse/colormuse-books/internal/domain/session"
)

type memoryEntry struct {
	mu        sync.Mutex
	state     *session.State
	expiresAt time.Time
}

// MemoryStore keeps the most recently used sessions in a bounded LRU cache.
// Each session has its own lock so transitions of different sessions never wait on each other.
type MemoryStore struct {
	mu    sync.Mutex
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore creates a store holding at most capacity sessions for ttl after their last update.
func NewMemoryStore(capacity int, ttl time.Duration) (*MemoryStore, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("session capacity must be positive, got %d", capacity)
	}
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &MemoryStore{cache: cache, ttl: ttl, now: time.Now}, nil
}

// Get returns a copy of the session, or a fresh state when it is unknown or expired.
func (s *MemoryStore) Get(_ context.Context, id string) (*session.State, error) {
	e := s.lookup(id, false)
	if e == nil {
		return session.NewState(id, s.now()), nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.expired(e) {
		return session.NewState(id, s.now()), nil
	}
	return e.state.Clone(), nil
}

// Update applies fn under the session's lock and keeps the result even when fn fails.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*session.State) error) (*session.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := s.acquire(id)
	defer e.mu.Unlock()
	if s.expired(e) {
		e.state = session.NewState(id, s.now())
	}
	err := fn(e.state)
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	// fn may run long enough for other sessions to evict this one.
	s.restore(id, e)
	return e.state.Clone(), err
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of cached sessions, expired ones included.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

func (s *MemoryStore) lookup(id string, create bool) *memoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(id); ok {
		return v.(*memoryEntry)
	}
	if !create {
		return nil
	}
	e := &memoryEntry{state: session.NewState(id, s.now())}
	s.cache.Add(id, e)
	return e
}

// acquire returns the cached entry for id with its lock held, retrying when
// the entry was evicted or replaced while waiting for the lock.
func (s *MemoryStore) acquire(id string) *memoryEntry {
	for {
		e := s.lookup(id, true)
		e.mu.Lock()
		if s.current(id, e) {
			return e
		}
		e.mu.Unlock()
	}
}

func (s *MemoryStore) current(id string, e *memoryEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Peek(id)
	return ok && v.(*memoryEntry) == e
}

// restore puts e back when it was evicted during an update. Must be called with e.mu held.
func (s *MemoryStore) restore(id string, e *memoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache.Peek(id); !ok {
		s.cache.Add(id, e)
	}
}

// expired must be called with e.mu held.
func (s *MemoryStore) expired(e *memoryEntry) bool {
	return s.ttl > 0 && !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}
