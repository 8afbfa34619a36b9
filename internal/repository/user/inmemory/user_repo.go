package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"
)

type UserStorage struct {
	mtx    sync.RWMutex
	users  map[int64]*user.User
	nextID int64
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		users:  make(map[int64]*user.User),
		nextID: 1,
	}
}

func (s *UserStorage) Create(ctx context.Context, u *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return repo.ErrAlreadyExists
		}
		if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
			return repo.ErrAlreadyExists
		}
	}

	u.ID = s.nextID
	s.nextID++
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	stored := *u
	s.users[u.ID] = &stored
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id int64) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	found := *u
	return &found, nil
}

// GetByLogin ищет по username, затем по email без учёта регистра
func (s *UserStorage) GetByLogin(ctx context.Context, login string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var byEmail *user.User
	for _, u := range s.users {
		if u.Username == login {
			found := *u
			return &found, nil
		}
		if byEmail == nil && u.Email != "" && strings.EqualFold(u.Email, login) {
			byEmail = u
		}
	}
	if byEmail == nil {
		return nil, repo.ErrNotFound
	}
	found := *byEmail
	return &found, nil
}
