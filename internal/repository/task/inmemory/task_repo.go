package inmemory

import (
	"context"
	"sync"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/task"
	repo "todoTracker/internal/repository"
)

// TaskStorage хранит копии задач, наружу тоже отдаёт копии
type TaskStorage struct {
	storage map[int64]*task.Task
	mtx     *sync.RWMutex
	ids     []int64
	nextID  int64
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []int64{},
		nextID:  1,
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskToCreate.ID = s.nextID
	s.nextID++
	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}
	if taskToCreate.Category == "" {
		taskToCreate.Category = task.DefaultCategory
	}

	s.storage[taskToCreate.ID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64, scope repo.Scope) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.visible(id, scope)
	if !ok {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

func (s *TaskStorage) List(ctx context.Context, scope repo.Scope) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		taskToGet := s.storage[id]
		if scope.IsScoped() && !taskToGet.OwnedBy(*scope.OwnerID) {
			continue
		}
		res = append(res, taskToGet.Clone())
	}
	return res, nil
}

// Update применяет патч под одной блокировкой, проверка владельца в том же шаге
func (s *TaskStorage) Update(ctx context.Context, id int64, scope repo.Scope, patch task.Patch) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskToUpdate, ok := s.visible(id, scope)
	if !ok {
		return repo.ErrNotFound
	}
	patch.Apply(taskToUpdate)
	return nil
}

func (s *TaskStorage) Delete(ctx context.Context, id int64, scope repo.Scope) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.visible(id, scope); !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// вызывать под блокировкой
func (s *TaskStorage) visible(id int64, scope repo.Scope) (*task.Task, bool) {
	t, ok := s.storage[id]
	if !ok {
		return nil, false
	}
	if scope.IsScoped() && !t.OwnedBy(*scope.OwnerID) {
		return nil, false
	}
	return t, true
}
