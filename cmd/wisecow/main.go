package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"wisecow/internal/config"
	"wisecow/internal/generator"
	"wisecow/internal/server"
)

func main() {
	cfg := config.LoadServer()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("starting wisecow", "port", cfg.Port)

	gen, err := generator.NewPipeline(cfg.FortuneCmd, cfg.CowsayCmd)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}

	srv := server.New(fmt.Sprintf(":%d", cfg.Port), gen, cfg.GenTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
