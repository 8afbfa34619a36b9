package handlers

import (
	"mime"
	"net/http"

	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

const jsonMediaType = "application/json"

// acceptsJSON: пустой Content-Type пропускаем, старые клиенты его не шлют
func acceptsJSON(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == jsonMediaType
}

func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	if acceptsJSON(r) {
		return true
	}
	logger.Warn("HTTP: Неверный тип контента",
		zap.String("expected", jsonMediaType),
		zap.String("received", r.Header.Get("Content-Type")),
		zap.String("client_ip", r.RemoteAddr))

	writeError(w, service.NewValidationError("Content-Type", "ожидается "+jsonMediaType))
	return false
}
