// Package session keeps each visitor's exercise state between requests.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hku-span/span2030/internal/exercise"
)

// ErrNotFound is returned when a session has no saved state for a block.
var ErrNotFound = errors.New("session state not found")

// DefaultTTL is how long idle exercise state is kept.
const DefaultTTL = 12 * time.Hour

// Store persists exercise state per session and block. Blocks never share state.
type Store interface {
	Get(ctx context.Context, sessionID, blockID string) (exercise.State, error)
	Save(ctx context.Context, sessionID, blockID string, state exercise.State) error
	Delete(ctx context.Context, sessionID, blockID string) error
}

// Load returns the saved state, or an empty state when none exists.
func Load(ctx context.Context, s Store, sessionID, blockID string) (exercise.State, error) {
	state, err := s.Get(ctx, sessionID, blockID)
	if errors.Is(err, ErrNotFound) {
		return exercise.NewState(), nil
	}
	return state, err
}

type memoryEntry struct {
	state     exercise.State
	expiresAt time.Time
}

// MemoryStore is an in-process Store. State is lost on restart.
type MemoryStore struct {
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
	saves   int
	mu      sync.Mutex
}

// NewMemoryStore creates an in-memory store. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID, blockID string) (exercise.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(sessionID, blockID)
	e, ok := s.entries[k]
	if !ok {
		return exercise.State{}, ErrNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, k)
		return exercise.State{}, ErrNotFound
	}
	return e.state.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID, blockID string, state exercise.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saves++
	if s.saves%256 == 0 {
		s.purgeLocked()
	}

	s.entries[key(sessionID, blockID)] = &memoryEntry{
		state:     state.Clone(),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID, blockID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key(sessionID, blockID))
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) purgeLocked() {
	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

func key(sessionID, blockID string) string {
	return "span2030:session:" + sessionID + ":block:" + blockID
}
