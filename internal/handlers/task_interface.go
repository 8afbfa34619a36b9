package handlers

import (
	"context"
	"io"
	"time"

	"todoTracker/internal/auth"
	"todoTracker/internal/models/task"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	OwnershipEnforced() bool
	List(ctx context.Context, caller *auth.Identity) ([]*task.Task, error)
	Create(ctx context.Context, caller *auth.Identity, body io.Reader) (*task.Task, error)
	Update(ctx context.Context, caller *auth.Identity, id int64, body io.Reader) (*task.Task, error)
	Delete(ctx context.Context, caller *auth.Identity, id int64) (int64, error)
}

type AuthService interface {
	Login(ctx context.Context, login, password string) (string, *auth.Identity, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(res *auth.Resolution) (*auth.Identity, error)
	SessionTTL() time.Duration
}
