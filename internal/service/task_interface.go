package service

import (
	"context"
	"time"

	"todoTracker/internal/models/task"
	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"
)

type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, id int64, scope repo.Scope) (*task.Task, error)
	List(ctx context.Context, scope repo.Scope) ([]*task.Task, error)
	Update(ctx context.Context, id int64, scope repo.Scope, patch task.Patch) error
	Delete(ctx context.Context, id int64, scope repo.Scope) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByLogin(ctx context.Context, login string) (*user.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	Lookup(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}
