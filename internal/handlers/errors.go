package handlers

import (
	"errors"
	"net/http"

	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

const codeInternal = "INTERNAL_ERROR"

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	if statusCode >= http.StatusInternalServerError {
		logger.Error("HTTP: Ошибка хранилища", businessErr,
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))
	} else {
		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))
	}

	payload := []Payload{
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
	}
	if len(businessErr.Details) > 0 {
		payload = append(payload, toPayload("details", businessErr.Details))
	}
	responseWithJSON(w, statusCode, payload...)
	return true
}

// writeError отвечает бизнес-ошибкой, а всё неизвестное прячет за 500
func writeError(w http.ResponseWriter, err error) {
	if handleBusinessError(w, err) {
		return
	}
	logger.Error("HTTP: Необработанная ошибка", err)
	responseWithError(w, http.StatusInternalServerError, codeInternal, "Внутренняя ошибка сервера")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeUnauthorized, service.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation, service.CodeNoData:
		return http.StatusBadRequest
	case service.CodeStore:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	responseWithError(w, http.StatusNotFound, service.CodeNotFound, "Маршрут не найден")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	responseWithError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Метод не поддерживается")
}
