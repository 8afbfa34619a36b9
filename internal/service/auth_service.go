package service

import (
	"context"
	"errors"
	"time"

	"todoTracker/internal/auth"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"

	"go.uber.org/zap"
)

type AuthService struct {
	users      UserRepository
	sessions   SessionRepository
	verifier   *auth.Verifier
	hasher     *auth.PasswordHasher
	sessionTTL time.Duration
}

func NewAuthService(users UserRepository, sessions SessionRepository, verifier *auth.Verifier, hasher *auth.PasswordHasher, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		verifier:   verifier,
		hasher:     hasher,
		sessionTTL: sessionTTL,
	}
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Login проверяет креды и открывает сессию; возвращает токен для cookie
func (s *AuthService) Login(ctx context.Context, login, password string) (string, *auth.Identity, error) {
	u, err := s.verifier.Verify(ctx, login, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Info("Service: Неудачная попытка входа", zap.String("login", login))
			return "", nil, NewInvalidCredentials()
		}
		logger.Error("Service: Ошибка проверки кредов", err)
		return "", nil, NewStoreError("проверка пользователя", err)
	}

	token, err := s.sessions.Create(ctx, u.ID, s.sessionTTL)
	if err != nil {
		logger.Error("Service: Не удалось создать сессию", err, zap.Int64("user_id", u.ID))
		return "", nil, NewStoreError("создание сессии", err)
	}

	logger.Info("Service: Пользователь вошёл", zap.Int64("user_id", u.ID))
	return token, auth.IdentityFromUser(u), nil
}

// Logout идемпотентен: неизвестный токен не ошибка
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, repo.ErrNotFound) {
		logger.Error("Service: Не удалось удалить сессию", err)
		return NewStoreError("удаление сессии", err)
	}
	return nil
}

// CurrentUser отвечает только для сессии; Basic-креды сюда не считаются
func (s *AuthService) CurrentUser(res *auth.Resolution) (*auth.Identity, error) {
	if res == nil || res.Branch != auth.BranchSession || res.Identity == nil {
		return nil, NewUnauthorized()
	}
	return res.Identity, nil
}

// SeedUsers создаёт пользователей из конфига, существующих пропускает
func (s *AuthService) SeedUsers(ctx context.Context, seeds []config.SeedUser) error {
	for _, seed := range seeds {
		if _, err := s.users.GetByLogin(ctx, seed.Username); err == nil {
			continue
		} else if !errors.Is(err, repo.ErrNotFound) {
			return NewStoreError("поиск пользователя", err)
		}

		hash, err := s.hasher.Hash(seed.Password)
		if err != nil {
			return NewStoreError("хеширование пароля", err)
		}

		displayName := seed.DisplayName
		if displayName == "" {
			displayName = seed.Username
		}

		u := &user.User{
			Username:     seed.Username,
			Email:        seed.Email,
			DisplayName:  displayName,
			PasswordHash: hash,
		}
		if err := s.users.Create(ctx, u); err != nil {
			if errors.Is(err, repo.ErrAlreadyExists) {
				continue
			}
			return NewStoreError("создание пользователя", err)
		}
		logger.Info("Service: Пользователь создан из конфига", zap.String("username", u.Username), zap.Int64("user_id", u.ID))
	}
	return nil
}
