package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"todoTracker/internal/auth"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	"todoTracker/internal/ordering"
	repo "todoTracker/internal/repository"
	"todoTracker/internal/validation"

	"go.uber.org/zap"
)

const taskResource = "Задача"

// TaskService один сервис на оба режима: с проверкой владельца и открытый
type TaskService struct {
	repo             TaskRepository
	sanitizer        *validation.Sanitizer
	ordering         *ordering.Policy
	enforceOwnership bool
	now              func() time.Time
}

type TaskServiceOption func(*TaskService)

func WithOwnership(enforce bool) TaskServiceOption {
	return func(s *TaskService) {
		s.enforceOwnership = enforce
	}
}

func WithOrdering(policy *ordering.Policy) TaskServiceOption {
	return func(s *TaskService) {
		if policy != nil {
			s.ordering = policy
		}
	}
}

func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *TaskService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTaskService(repo TaskRepository, options ...TaskServiceOption) *TaskService {
	s := &TaskService{
		repo:             repo,
		sanitizer:        validation.NewSanitizer(),
		ordering:         ordering.New(time.UTC, nil),
		enforceOwnership: true,
		now:              time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *TaskService) OwnershipEnforced() bool {
	return s.enforceOwnership
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// scope: в строгом режиме без пользователя дальше не идём
func (s *TaskService) scope(caller *auth.Identity) (repo.Scope, error) {
	if !s.enforceOwnership {
		return repo.Unscoped(), nil
	}
	if caller == nil {
		return repo.Scope{}, NewUnauthorized()
	}
	return repo.OwnedBy(caller.ID), nil
}

func (s *TaskService) List(ctx context.Context, caller *auth.Identity) ([]*task.Task, error) {
	scope, err := s.scope(caller)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.List(ctx, scope)
	if err != nil {
		logger.Error("Service: Не удалось получить список задач", err)
		return nil, NewStoreError("получение задач", err)
	}

	s.ordering.Sort(tasks)
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, caller *auth.Identity, body io.Reader) (*task.Task, error) {
	scope, err := s.scope(caller)
	if err != nil {
		return nil, err
	}

	raw, err := validation.Decode(body)
	if err != nil {
		return nil, FromValidation(err)
	}

	fields, err := s.sanitizer.ParseCreate(raw)
	if err != nil {
		return nil, FromValidation(err)
	}

	newTask := &task.Task{
		Text:        fields.Text,
		Description: fields.Description,
		DueDate:     fields.DueDate,
		Category:    fields.Category,
		Completed:   fields.Completed,
		CreatedAt:   s.now().UTC(),
	}
	// в открытом режиме владелец пишется, только если пользователь известен
	if caller != nil {
		ownerID := caller.ID
		newTask.OwnerID = &ownerID
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		logger.Error("Service: Не удалось создать задачу", err)
		return nil, NewStoreError("создание задачи", err)
	}

	created, err := s.repo.GetByID(ctx, newTask.ID, scope)
	if err != nil {
		logger.Error("Service: Созданная задача не читается", err, zap.Int64("task_id", newTask.ID))
		return nil, NewStoreError("чтение созданной задачи", err)
	}

	logger.Info("Service: Задача создана", zap.Int64("task_id", created.ID))
	return created, nil
}

// Update: поиск с учётом владельца, разбор тела, запись, повторное чтение из хранилища
func (s *TaskService) Update(ctx context.Context, caller *auth.Identity, id int64, body io.Reader) (*task.Task, error) {
	scope, err := s.scope(caller)
	if err != nil {
		return nil, err
	}

	if _, err := s.lookup(ctx, id, scope); err != nil {
		return nil, err
	}

	raw, err := validation.Decode(body)
	if err != nil {
		return nil, FromValidation(err)
	}

	patch, err := s.sanitizer.ParseUpdate(raw)
	if err != nil {
		return nil, FromValidation(err)
	}

	if err := s.repo.Update(ctx, id, scope, patch); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача исчезла до обновления", zap.Int64("task_id", id))
			return nil, NewNotFound(taskResource, id)
		}
		logger.Error("Service: Не удалось обновить задачу", err, zap.Int64("task_id", id))
		return nil, NewStoreError("обновление задачи", err)
	}

	updated, err := s.lookup(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	logger.Info("Service: Задача обновлена", zap.Int64("task_id", id), zap.Strings("fields", patch.Fields()))
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, caller *auth.Identity, id int64) (int64, error) {
	scope, err := s.scope(caller)
	if err != nil {
		return 0, err
	}

	if _, err := s.lookup(ctx, id, scope); err != nil {
		return 0, err
	}

	if err := s.repo.Delete(ctx, id, scope); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, NewNotFound(taskResource, id)
		}
		logger.Error("Service: Не удалось удалить задачу", err, zap.Int64("task_id", id))
		return 0, NewStoreError("удаление задачи", err)
	}

	logger.Info("Service: Задача удалена", zap.Int64("task_id", id))
	return id, nil
}

func (s *TaskService) lookup(ctx context.Context, id int64, scope repo.Scope) (*task.Task, error) {
	found, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound(taskResource, id)
		}
		logger.Error("Service: Не удалось получить задачу", err, zap.Int64("target_id", id))
		return nil, NewStoreError("получение задачи", err)
	}
	return found, nil
}
