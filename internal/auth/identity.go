package auth

import (
	"context"

	"todoTracker/internal/models/user"
)

// Identity пользователь, от имени которого выполняется запрос
type Identity struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func IdentityFromUser(u *user.User) *Identity {
	return &Identity{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}

type contextKey string

const resolutionKey contextKey = "auth_resolution"

func WithResolution(ctx context.Context, res *Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey, res)
}

func ResolutionFrom(ctx context.Context) *Resolution {
	if res, ok := ctx.Value(resolutionKey).(*Resolution); ok && res != nil {
		return res
	}
	return &Resolution{Branch: BranchAnonymous}
}

// IdentityFrom возвращает пользователя текущего запроса, если он определён
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	res := ResolutionFrom(ctx)
	if res.Identity == nil {
		return nil, false
	}
	return res.Identity, true
}
