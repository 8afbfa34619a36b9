package auth

import (
	"net/http"

	"todoTracker/internal/logger"

	"go.uber.org/zap"
)

// Middleware определяет пользователя и кладёт результат в контекст запроса.
// Анонимные запросы не отклоняются: решение принимает сервис.
func Middleware(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := resolver.Resolve(r.Context(), r)

			fields := []zap.Field{zap.String("branch", string(res.Branch))}
			if res.Identity != nil {
				fields = append(fields, zap.Int64("user_id", res.Identity.ID))
			}
			logger.Debug("Auth: Пользователь определён", fields...)

			next.ServeHTTP(w, r.WithContext(WithResolution(r.Context(), res)))
		})
	}
}
