package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"todoTracker/internal/logger"

	"go.uber.org/zap"
)

type clientWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter фиксированное окно в минуту на IP клиента
type RateLimiter struct {
	rpm     int
	window  time.Duration
	now     func() time.Time
	mtx     sync.Mutex
	clients map[string]*clientWindow
}

func NewRateLimiter(rpm int, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		rpm:     rpm,
		window:  time.Minute,
		now:     now,
		clients: make(map[string]*clientWindow),
	}
}

// allow возвращает остаток и время сброса окна
func (l *RateLimiter) allow(ip string) (bool, int, time.Time) {
	now := l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	info, ok := l.clients[ip]
	if !ok || now.After(info.resetAt) {
		info = &clientWindow{resetAt: now.Add(l.window)}
		l.clients[ip] = info
	}
	if info.count >= l.rpm {
		return false, 0, info.resetAt
	}
	info.count++
	return true, l.rpm - info.count, info.resetAt
}

// PurgeExpired удаляет клиентов с истёкшим окном
func (l *RateLimiter) PurgeExpired(ctx context.Context) (int, error) {
	now := l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	removed := 0
	for ip, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, ip)
			removed++
		}
	}
	return removed, nil
}

// Handler при rpm <= 0 ограничение выключено
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l.rpm <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ok, remaining, resetAt := l.allow(ip)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.rpm))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !ok {
			retryAfter := int(resetAt.Sub(l.now()).Seconds()) + 1
			logger.Warn("HTTP: Превышен лимит запросов",
				zap.String("client_ip", ip),
				zap.String("request_id", GetRequestID(r.Context())))

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":       "RATE_LIMITED",
				"message":     "Слишком много запросов. Попробуйте позже.",
				"retry_after": retryAfter,
				"request_id":  GetRequestID(r.Context()),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
