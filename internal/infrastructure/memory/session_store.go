package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/account-service/internal/session"
)

type sessionEntry struct {
	state     session.State
	expiresAt time.Time
}

// SessionStore is the in-process counterpart of the Redis store, with the
// same per-user version semantics.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	byID     map[string]sessionEntry
	versions map[string]int64
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		byID:     make(map[string]sessionEntry),
		versions: make(map[string]int64),
	}
}

func (s *SessionStore) Load(ctx context.Context, id string) (session.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return session.State{}, false, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.byID, id)
		return session.State{}, false, nil
	}
	if !e.state.IsGuest() && e.state.Version != s.versions[e.state.UserID] {
		delete(s.byID, id)
		return session.State{}, false, nil
	}
	return e.state, true, nil
}

func (s *SessionStore) Save(ctx context.Context, st session.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[st.ID] = sessionEntry{state: st, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, id)
	return nil
}

func (s *SessionStore) UserVersion(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.versions[userID], nil
}

func (s *SessionStore) RevokeUser(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.versions[userID]++
	return s.versions[userID], nil
}
