package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"
	pg "todoTracker/internal/repository/postgres"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userColumns = `id, username, email, display_name, password_hash, created_at`

type UserStorage struct {
	pool *pgxpool.Pool
}

func NewUserStorage(pool *pgxpool.Pool) *UserStorage {
	return &UserStorage{pool: pool}
}

func (s *UserStorage) Create(ctx context.Context, u *user.User) error {
	start := time.Now()

	query := `INSERT INTO users (username, email, display_name, password_hash)
				VALUES ($1, $2, $3, $4)
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query, u.Username, u.Email, u.DisplayName, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Не удалось добавить пользователя", err, zap.String("username", u.Username))
		return fmt.Errorf("добавление пользователя: %w", err)
	}

	pg.WarnIfSlow("create_user", start, 50*time.Millisecond)
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByLogin совпадение по username приоритетнее совпадения по email
func (s *UserStorage) GetByLogin(ctx context.Context, login string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
				WHERE username = $1 OR (email <> '' AND LOWER(email) = LOWER($1))
				ORDER BY (username = $1) DESC
				LIMIT 1`
	return s.getOne(ctx, query, login)
}

func (s *UserStorage) getOne(ctx context.Context, query string, arg any) (*user.User, error) {
	start := time.Now()

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	pg.WarnIfSlow("get_user", start, 100*time.Millisecond)
	return u, nil
}
