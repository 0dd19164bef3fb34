// Package session keeps live challenges by ID.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kyiku/tile-captcha/internal/captcha"
	"github.com/kyiku/tile-captcha/internal/challenge"
)

var (
	ErrNotFound = errors.New("challenge not found")
	ErrNoKey    = errors.New("challenge has no answer key")
)

// Entry is a stored challenge with its answer key, if known.
type Entry struct {
	Challenge *challenge.Challenge
	Key       *captcha.Key
	CreatedAt time.Time
}

// Store manages live challenges in memory. Removing an entry destroys its
// challenge.
type Store struct {
	entries map[string]*Entry
	mu      sync.RWMutex
	expiry  time.Duration // 0 means no expiry
	now     func() time.Time
}

// NewStore creates a new Store with no expiry.
func NewStore() *Store {
	return NewStoreWithExpiry(0)
}

// NewStoreWithExpiry creates a new Store with the specified expiry duration.
func NewStoreWithExpiry(expiry time.Duration) *Store {
	return &Store{
		entries: make(map[string]*Entry),
		expiry:  expiry,
		now:     time.Now,
	}
}

// Create registers c and returns its ID.
func (s *Store) Create(c *challenge.Challenge, key *captcha.Key) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.entries[id] = &Entry{
		Challenge: c,
		Key:       key,
		CreatedAt: s.now(),
	}
	return id
}

// Get retrieves an entry by ID.
// Returns nil and false if the entry does not exist or has expired.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	entry, exists := s.entries[id]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if s.expired(entry) {
		s.remove(id, entry)
		return nil, false
	}

	return entry, true
}

// Replace destroys the challenge stored under id and registers c in its place.
func (s *Store) Replace(id string, c *challenge.Challenge, key *captcha.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.entries[id]
	if !exists {
		return ErrNotFound
	}
	_ = old.Challenge.Destroy()

	s.entries[id] = &Entry{
		Challenge: c,
		Key:       key,
		CreatedAt: s.now(),
	}
	return nil
}

// Delete removes and destroys an entry. It reports whether one existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	entry, exists := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if exists {
		_ = entry.Challenge.Destroy()
	}
	return exists
}

// remove deletes and destroys entry only if it is still the one stored under
// id, so a Replace that ran since the caller's lookup is left alone.
func (s *Store) remove(id string, entry *Entry) bool {
	s.mu.Lock()
	if s.entries[id] != entry {
		s.mu.Unlock()
		return false
	}
	delete(s.entries, id)
	s.mu.Unlock()

	_ = entry.Challenge.Destroy()
	return true
}

// Verify checks the current solution of id against its key. A correct
// solution consumes the entry.
func (s *Store) Verify(id string, tolerance float64) error {
	entry, ok := s.Get(id)
	if !ok {
		return ErrNotFound
	}
	if entry.Key == nil {
		return ErrNoKey
	}

	solution, err := entry.Challenge.Solution()
	if err != nil {
		return err
	}
	if err := entry.Key.Verify(solution, tolerance); err != nil {
		return err
	}

	s.remove(id, entry)
	return nil
}

// Sweep removes every expired entry and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	var expired []*Entry
	for id, entry := range s.entries {
		if s.expired(entry) {
			expired = append(expired, entry)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, entry := range expired {
		_ = entry.Challenge.Destroy()
	}
	return len(expired)
}

// Count returns the number of stored challenges.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) expired(entry *Entry) bool {
	return s.expiry > 0 && s.now().Sub(entry.CreatedAt) > s.expiry
}
