// Package migrations embeds the schema and applies it with golang-migrate.
// Every statement is idempotent, so Up is safe to run on each start.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"todoTracker/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

func newMigrate(connString string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("источник миграций: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, DriverURL(connString))
	if err != nil {
		return nil, fmt.Errorf("инициализация миграций: %w", err)
	}
	return m, nil
}

// DriverURL переводит postgres:// строку в схему драйвера pgx/v5 у golang-migrate
func DriverURL(connString string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix)
		}
	}
	return connString
}

func Up(connString string) error {
	logger.Info("Migrations: Применение миграций")

	m, err := newMigrate(connString)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Migrations: Схема актуальна")
			return nil
		}
		logger.Error("Migrations: Ошибка применения", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Migrations: Миграции применены", zap.Uint("version", version))
	return nil
}

func Down(connString string) error {
	logger.Info("Migrations: Откат миграций")

	m, err := newMigrate(connString)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migrations: Ошибка отката", err)
		return fmt.Errorf("откат миграций: %w", err)
	}
	logger.Info("Migrations: Миграции откачены")
	return nil
}
