package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"todoTracker/internal/models/task"
	"todoTracker/internal/repository"
	"todoTracker/internal/repository/task/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownerPtr(id int64) *int64 {
	return &id
}

// TestTaskStorage_HealthCheck тестирует проверку здоровья
func TestTaskStorage_HealthCheck(t *testing.T) {
	storage := inmemory.NewTaskStorage()
	assert.NoError(t, storage.HealthCheck(context.Background()))
}

// TestTaskStorage_Create тестирует создание задачи
func TestTaskStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	first := &task.Task{Text: "first", OwnerID: ownerPtr(1)}
	second := &task.Task{Text: "second", OwnerID: ownerPtr(1)}

	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Create(ctx, second))

	// id монотонно растут, created_at и категория заполнены
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, task.DefaultCategory, first.Category)

	retrieved, err := storage.GetByID(ctx, first.ID, repository.Unscoped())
	require.NoError(t, err)
	assert.Equal(t, "first", retrieved.Text)
}

// TestTaskStorage_GetByID_Scope проверяет, что чужая задача не видна
func TestTaskStorage_GetByID_Scope(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	owned := &task.Task{Text: "mine", OwnerID: ownerPtr(1)}
	require.NoError(t, storage.Create(ctx, owned))

	_, err := storage.GetByID(ctx, owned.ID, repository.OwnedBy(1))
	assert.NoError(t, err)

	_, err = storage.GetByID(ctx, owned.ID, repository.OwnedBy(2))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = storage.GetByID(ctx, 999, repository.Unscoped())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_ReturnsCopies изменения снаружи не попадают в хранилище
func TestTaskStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := &task.Task{Text: "original"}
	require.NoError(t, storage.Create(ctx, created))

	created.Text = "changed after create"
	got, err := storage.GetByID(ctx, created.ID, repository.Unscoped())
	require.NoError(t, err)
	got.Text = "changed after get"

	again, err := storage.GetByID(ctx, created.ID, repository.Unscoped())
	require.NoError(t, err)
	assert.Equal(t, "original", again.Text)
}

// TestTaskStorage_List тестирует фильтрацию по владельцу
func TestTaskStorage_List(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	require.NoError(t, storage.Create(ctx, &task.Task{Text: "a", OwnerID: ownerPtr(1)}))
	require.NoError(t, storage.Create(ctx, &task.Task{Text: "b", OwnerID: ownerPtr(2)}))
	require.NoError(t, storage.Create(ctx, &task.Task{Text: "c"}))

	all, err := storage.List(ctx, repository.Unscoped())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := storage.List(ctx, repository.OwnedBy(1))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].Text)

	none, err := storage.List(ctx, repository.OwnedBy(42))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

// TestTaskStorage_Update тестирует частичное обновление
func TestTaskStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	original := &task.Task{
		Text:        "Original",
		Description: "desc",
		DueDate:     &due,
		Category:    "work",
		OwnerID:     ownerPtr(1),
	}
	require.NoError(t, storage.Create(ctx, original))

	err := storage.Update(ctx, original.ID, repository.OwnedBy(1), task.NewPatch(task.WithCompleted(true)))
	require.NoError(t, err)

	got, err := storage.GetByID(ctx, original.ID, repository.Unscoped())
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "Original", got.Text)
	assert.Equal(t, "desc", got.Description)
	assert.Equal(t, "work", got.Category)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Equal(t, original.CreatedAt, got.CreatedAt)

	// очистка даты
	err = storage.Update(ctx, original.ID, repository.OwnedBy(1), task.NewPatch(task.WithDueDate(nil)))
	require.NoError(t, err)
	got, err = storage.GetByID(ctx, original.ID, repository.Unscoped())
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)

	// чужой владелец
	err = storage.Update(ctx, original.ID, repository.OwnedBy(2), task.NewPatch(task.WithText("hijack")))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_Delete тестирует удаление
func TestTaskStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	toDelete := &task.Task{Text: "bye", OwnerID: ownerPtr(1)}
	require.NoError(t, storage.Create(ctx, toDelete))

	err := storage.Delete(ctx, toDelete.ID, repository.OwnedBy(2))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, storage.Delete(ctx, toDelete.ID, repository.OwnedBy(1)))

	_, err = storage.GetByID(ctx, toDelete.ID, repository.Unscoped())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = storage.Delete(ctx, toDelete.ID, repository.Unscoped())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_ConcurrentCreate тестирует параллельное создание
func TestTaskStorage_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = storage.Create(ctx, &task.Task{Text: fmt.Sprintf("task %d", i)})
		}(i)
	}
	wg.Wait()

	all, err := storage.List(ctx, repository.Unscoped())
	require.NoError(t, err)
	assert.Len(t, all, 50)

	seen := map[int64]bool{}
	for _, tk := range all {
		assert.False(t, seen[tk.ID], "duplicate id %d", tk.ID)
		seen[tk.ID] = true
	}
}
