package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps session state in process memory.
type MemoryStore struct {
	states map[string]State
	ttl    time.Duration
	now    func() time.Time
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory store. States older than ttl are
// dropped on load; a zero ttl keeps them forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		states: make(map[string]State),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Load returns the state for a session
func (s *MemoryStore) Load(_ context.Context, sessionID string) (State, error) {
	s.mu.RLock()
	state, exists := s.states[sessionID]
	s.mu.RUnlock()

	if !exists || s.expired(state) {
		return Idle(), nil
	}
	return state, nil
}

// Save stores the state for a session
func (s *MemoryStore) Save(_ context.Context, sessionID string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state.Pending == "" {
		state.Pending = PendingNone
	}
	state.UpdatedAt = s.now()
	s.states[sessionID] = state
	return nil
}

// Clear forgets a session
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, sessionID)
	return nil
}

// Len returns the number of sessions held, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.states)
}

func (s *MemoryStore) expired(state State) bool {
	return s.ttl > 0 && s.now().Sub(state.UpdatedAt) > s.ttl
}
