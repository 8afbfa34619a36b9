package inmemory

import (
	"context"
	"sync"
	"time"

	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
)

type entry struct {
	userID    int64
	expiresAt time.Time
}

type SessionStore struct {
	mtx      sync.Mutex
	sessions map[string]entry
	now      func() time.Time
}

func NewSessionStore(now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions: make(map[string]entry),
		now:      now,
	}
}

func (s *SessionStore) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.sessions[token] = entry{userID: userID, expiresAt: s.now().Add(ttl)}
	return token, nil
}

func (s *SessionStore) Lookup(ctx context.Context, token string) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return 0, repo.ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, token)
		return 0, repo.ErrNotFound
	}
	return e.userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *SessionStore) HealthCheck(ctx context.Context) error {
	return nil
}

// PurgeExpired удаляет истёкшие сессии и возвращает их количество
func (s *SessionStore) PurgeExpired(ctx context.Context) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	purged := 0
	for token, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged, nil
}

func (s *SessionStore) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.sessions)
}
