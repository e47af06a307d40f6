package cache

import (
	"context"
	"sync"
	"time"

	"tutordesk/internal/model"
)

// MemoryStateStore keeps view state in process; used when Redis is not configured.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]model.ViewState
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]model.ViewState)}
}

func (s *MemoryStateStore) Load(_ context.Context, sessionID string) (model.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[sessionID], nil
}

func (s *MemoryStateStore) Update(_ context.Context, sessionID string, fn func(*model.ViewState) error) (model.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[sessionID]
	if err := fn(&state); err != nil {
		return s.states[sessionID], err
	}
	s.states[sessionID] = state
	return state, nil
}

func (s *MemoryStateStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

// MemoryRevocations remembers signed-out session ids until their tokens expire.
type MemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{revoked: make(map[string]time.Time), now: time.Now}
}

func (r *MemoryRevocations) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, until := range r.revoked {
		if now.After(until) {
			delete(r.revoked, id)
		}
	}
	r.revoked[sessionID] = now.Add(ttl)
	return nil
}

func (r *MemoryRevocations) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[sessionID]
	return ok && r.now().Before(until), nil
}
