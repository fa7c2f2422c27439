// Package checkpoint provides SessionStore implementations that persist
// conversation threads: a volatile in-memory store for tests and demos, and
// a SQLite-backed store that survives process restarts so a thread can be
// resumed by its session ID.
package checkpoint

import (
	"sync"

	"github.com/reagent-ai/reagent/core"
)

// MemoryStore is a volatile SessionStore keeping sessions in a process local
// map. Safe for concurrent access; each returned session is cloned to
// prevent external mutation of internal state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewMemoryStore constructs an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*core.Session)}
}

// Get returns an existing session (clone) or creates a new one lazily.
func (s *MemoryStore) Get(sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess.Clone(), nil
	}
	return s.createLocked(sessionID).Clone(), nil
}

// Create forces the creation (or reset) of a session with the given ID.
func (s *MemoryStore) Create(sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(sessionID).Clone(), nil
}

// AppendEvent adds an event to an existing or newly created session.
func (s *MemoryStore) AppendEvent(sessionID string, ev core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = s.createLocked(sessionID)
	}
	sess.AddEvent(ev)
	return nil
}

// ApplyDelta merges a key/value delta into the session state.
func (s *MemoryStore) ApplyDelta(sessionID string, delta map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = s.createLocked(sessionID)
	}
	sess.MergeState(delta)
	return nil
}

// createLocked allocates and stores a new session; caller must hold the lock.
func (s *MemoryStore) createLocked(sessionID string) *core.Session {
	sess := core.NewSession(sessionID)
	s.sessions[sessionID] = sess
	return sess
}
