package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"todoTracker/internal/logger"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionStore хранит токен сессии -> id пользователя с TTL, общий для всех инстансов
type SessionStore struct {
	client *goredis.Client
	prefix string
}

func NewSessionStore(client *goredis.Client, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) key(token string) string {
	return s.prefix + token
}

func (s *SessionStore) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(token), userID, ttl).Err(); err != nil {
		logger.Error("Repository: Не удалось сохранить сессию", err, zap.Int64("user_id", userID))
		return "", fmt.Errorf("сохранение сессии: %w", err)
	}
	return token, nil
}

func (s *SessionStore) Lookup(ctx context.Context, token string) (int64, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось прочитать сессию", err)
		return 0, fmt.Errorf("чтение сессии: %w", err)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("битое значение сессии: %w", err)
	}
	return userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("удаление сессии: %w", err)
	}
	return nil
}

func (s *SessionStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
