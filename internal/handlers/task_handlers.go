package handlers

import (
	"net/http"
	"strconv"
	"time"

	"todoTracker/internal/auth"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	tasks, err := h.TaskService.List(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("HTTP: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	if !requireJSON(w, r) {
		return
	}

	created, err := h.TaskService.Create(r.Context(), caller, http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("HTTP: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromTask(created))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if !requireJSON(w, r) {
		return
	}

	updated, err := h.TaskService.Update(r.Context(), caller, id, http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("HTTP: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	deletedID, err := h.TaskService.Delete(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("HTTP: Задача удалена",
		zap.Int64("task_id", deletedID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.DeleteResponse{Deleted: true, ID: deletedID})
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Проверка здоровья не пройдена", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("time", time.Now().UTC().Format(time.RFC3339)))
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("time", time.Now().UTC().Format(time.RFC3339)))
}

// caller: при обязательном владении аноним получает 401 раньше разбора id и тела
func (h *TaskHandler) caller(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, _ := auth.IdentityFrom(r.Context())
	if identity == nil && h.TaskService.OwnershipEnforced() {
		writeError(w, service.NewUnauthorized())
		return nil, false
	}
	return identity, true
}

// taskID: роутер пропускает только цифры, здесь ловим переполнение и ноль
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.Warn("HTTP: Неверный id задачи",
			zap.String("id", raw),
			zap.String("client_ip", r.RemoteAddr))
		writeError(w, service.NewNotFound("Задача", raw))
		return 0, false
	}
	return id, true
}
