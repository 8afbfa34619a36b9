package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"
)

var ErrInvalidCredentials = errors.New("неверный логин или пароль")

type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByLogin(ctx context.Context, login string) (*user.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	Lookup(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

// Verifier проверяет пару логин/пароль по хранилищу пользователей
type Verifier struct {
	users  UserFinder
	hasher *PasswordHasher
}

func NewVerifier(users UserFinder, hasher *PasswordHasher) *Verifier {
	return &Verifier{users: users, hasher: hasher}
}

// Verify принимает username или email; неизвестный пользователь и неверный пароль неразличимы
func (v *Verifier) Verify(ctx context.Context, login, password string) (*user.User, error) {
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := v.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if !v.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
