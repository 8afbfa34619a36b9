package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todoTracker/internal/app"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "todoTracker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg)
	defer application.Shutdown()

	if err := application.Init(ctx); err != nil {
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Сервер остановлен с ошибкой", err)
		return err
	}
	return nil
}
