package middleware

import (
	"net/http"

	"todoTracker/internal/config"

	"github.com/go-chi/cors"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Content-Type", "Authorization", "X-Authorization", RequestIDHeader}
)

// CORS отвечает на preflight сам и добавляет заголовки ко всем ответам, включая ошибки.
// Запасные заголовки авторизации из конфига тоже разрешены браузеру.
func CORS(cfg config.CORSConfig, authHeaders []string) func(http.Handler) http.Handler {
	allowed := append([]string{}, corsHeaders...)
	allowed = append(allowed, authHeaders...)

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   allowed,
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
