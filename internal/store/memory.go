package store

import (
	"errors"
	"sync"
	"time"

	"github.com/slopefinder/slopefinder/internal/search"
)

// ErrNotFound is returned when no live session exists for an ID.
var ErrNotFound = errors.New("no such search session")

// SessionStore is a concurrency-safe in-memory registry of search
// sessions with idle-TTL retention. Expired sessions are dropped lazily
// on access and in bulk by PurgeExpired.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*search.Session

	// maxAge is the idle TTL; <= 0 means sessions never expire.
	maxAge time.Duration
}

// NewSessionStore creates a SessionStore with the given idle TTL.
func NewSessionStore(maxAge time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*search.Session),
		maxAge:   maxAge,
	}
}

// Put registers a session under its own ID.
func (s *SessionStore) Put(sess *search.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
}

// Get returns the live session for id and refreshes its idle timer. An
// expired session is treated as not found and removed.
func (s *SessionStore) Get(id string) (*search.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	if s.expired(sess) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	sess.Touch()
	return sess, nil
}

// PurgeExpired removes all expired sessions and reports how many were
// dropped.
func (s *SessionStore) PurgeExpired() int {
	if s.maxAge <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, sess := range s.sessions {
		if time.Since(sess.LastAccess()) > s.maxAge {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged
}

// Len returns the number of registered sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(sess *search.Session) bool {
	return s.maxAge > 0 && time.Since(sess.LastAccess()) > s.maxAge
}
