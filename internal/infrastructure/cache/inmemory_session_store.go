package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryGuestSessionStore keeps guest sessions in a process-local map.
// Suitable for single-instance deployments and tests; sessions do not
// survive a restart.
type InMemoryGuestSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]time.Time // sessionID -> expiry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryGuestSessionStore creates a store and starts its cleanup loop
func NewInMemoryGuestSessionStore(ttl time.Duration) *InMemoryGuestSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	store := &InMemoryGuestSessionStore{
		sessions: make(map[string]time.Time),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Issue creates a new session and returns its ID
func (s *InMemoryGuestSessionStore) Issue(_ context.Context) (string, error) {
	sessionID := uuid.New().String()

	s.mu.Lock()
	s.sessions[sessionID] = time.Now().Add(s.ttl)
	s.mu.Unlock()

	return sessionID, nil
}

// Validate checks the session and slides its expiry forward
func (s *InMemoryGuestSessionStore) Validate(_ context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.sessions[sessionID]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.sessions, sessionID)
		return false, nil
	}

	s.sessions[sessionID] = time.Now().Add(s.ttl)
	return true, nil
}

// Revoke deletes a session
func (s *InMemoryGuestSessionStore) Revoke(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Close stops the cleanup loop. Safe to call multiple times.
func (s *InMemoryGuestSessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryGuestSessionStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *InMemoryGuestSessionStore) removeExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for sessionID, expiry := range s.sessions {
		if now.After(expiry) {
			delete(s.sessions, sessionID)
		}
	}
}

var _ GuestSessionStore = (*InMemoryGuestSessionStore)(nil)
