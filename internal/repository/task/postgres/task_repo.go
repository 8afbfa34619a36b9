package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"
	pg "todoTracker/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const taskColumns = `id, user_id, text, description, due_date, category, completed, created_at`

const slowQuery = 100 * time.Millisecond

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	if taskToCreate.Category == "" {
		taskToCreate.Category = task.DefaultCategory
	}
	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}

	query := `INSERT INTO tasks
				(user_id, text, description, due_date, category, completed, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.OwnerID,
		taskToCreate.Text,
		taskToCreate.Description,
		taskToCreate.DueDate,
		taskToCreate.Category,
		taskToCreate.Completed,
		taskToCreate.CreatedAt,
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	pg.WarnIfSlow("create_task", start, slowQuery/2)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64, scope repo.Scope) (*task.Task, error) {
	start := time.Now()

	args := []any{id}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	if scope.IsScoped() {
		args = append(args, *scope.OwnerID)
		query += ` AND user_id = $2`
	}

	found, err := scanTask(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	pg.WarnIfSlow("get_task", start, slowQuery)
	return found, nil
}

func (s *Storage) List(ctx context.Context, scope repo.Scope) ([]*task.Task, error) {
	start := time.Now()

	args := []any{}
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if scope.IsScoped() {
		args = append(args, *scope.OwnerID)
		query += ` WHERE user_id = $1`
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	pg.WarnIfSlow("list_tasks", start, slowQuery)
	return tasks, nil
}

// Update пишет только поля из патча; фильтр по владельцу входит в сам UPDATE
func (s *Storage) Update(ctx context.Context, id int64, scope repo.Scope, patch task.Patch) error {
	start := time.Now()

	if patch.IsEmpty() {
		return errors.New("обновление задачи: пустой патч")
	}

	query, args := buildUpdate(id, scope, patch)
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Int64("task_id", id))
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	pg.WarnIfSlow("update_task", start, slowQuery)
	return nil
}

func (s *Storage) Delete(ctx context.Context, id int64, scope repo.Scope) error {
	start := time.Now()

	args := []any{id}
	query := `DELETE FROM tasks WHERE id = $1`
	if scope.IsScoped() {
		args = append(args, *scope.OwnerID)
		query += ` AND user_id = $2`
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	pg.WarnIfSlow("delete_task", start, slowQuery)
	return nil
}

func buildUpdate(id int64, scope repo.Scope, patch task.Patch) (string, []any) {
	sets := []string{}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Text != nil {
		set("text", *patch.Text)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.DueDateSet {
		set("due_date", patch.DueDate)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Completed != nil {
		set("completed", *patch.Completed)
	}

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if scope.IsScoped() {
		args = append(args, *scope.OwnerID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	return fmt.Sprintf("UPDATE tasks SET %s WHERE %s", strings.Join(sets, ", "), where), args
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Text,
		&t.Description,
		&t.DueDate,
		&t.Category,
		&t.Completed,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if t.Category == "" {
		t.Category = task.DefaultCategory
	}
	return t, nil
}
