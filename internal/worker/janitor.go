package worker

import (
	"context"
	"time"

	"todoTracker/internal/logger"

	"go.uber.org/zap"
)

const DefaultInterval = 5 * time.Minute

// Purger хранилище с записями, которые истекают сами по себе
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

type target struct {
	name   string
	purger Purger
}

// Janitor периодически чистит истёкшие сессии и окна лимитера
type Janitor struct {
	targets  []target
	interval time.Duration
}

type JanitorOption func(*Janitor)

func WithTarget(name string, purger Purger) JanitorOption {
	return func(j *Janitor) {
		if purger != nil {
			j.targets = append(j.targets, target{name: name, purger: purger})
		}
	}
}

func NewJanitor(interval time.Duration, options ...JanitorOption) *Janitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	j := &Janitor{interval: interval}
	for _, opt := range options {
		opt(j)
	}
	return j
}

func (j *Janitor) Targets() int {
	return len(j.targets)
}

// Start блокируется до отмены контекста
func (j *Janitor) Start(ctx context.Context) {
	if len(j.targets) == 0 {
		logger.Info("Worker: Нечего чистить, уборщик не запущен")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger.Info("Worker: Уборщик запущен", zap.Duration("interval", j.interval), zap.Int("targets", len(j.targets)))
	for {
		select {
		case <-ticker.C:
			j.Sweep(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Уборщик останавливается")
			return
		}
	}
}

// Sweep один проход по всем хранилищам; ошибка одного не мешает остальным
func (j *Janitor) Sweep(ctx context.Context) map[string]int {
	start := time.Now()
	removed := make(map[string]int, len(j.targets))

	for _, t := range j.targets {
		n, err := t.purger.PurgeExpired(ctx)
		if err != nil {
			logger.Warn("Worker: Ошибка очистки", zap.String("target", t.name), zap.Error(err))
			continue
		}
		removed[t.name] = n
	}

	fields := []zap.Field{zap.Duration("ms", time.Since(start))}
	for name, n := range removed {
		fields = append(fields, zap.Int(name, n))
	}
	logger.Debug("Worker: Завершение очистки", fields...)
	return removed
}
