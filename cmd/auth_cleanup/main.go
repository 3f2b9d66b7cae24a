package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"cabbooking/internal/config"
	"cabbooking/internal/database"
	"cabbooking/internal/pkg/logger"
	"cabbooking/internal/repository"
)

func main() {
	retain := flag.Duration("retain", 30*24*time.Hour, "keep expired or revoked refresh tokens this long")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New("cabbooking-auth-cleanup", cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := repository.NewRefreshTokenRepository(db).Purge(ctx, time.Now().Add(-*retain))
	if err != nil {
		log.Fatal("cleanup refresh_tokens failed", zap.Error(err))
	}
	log.Info("auth cleanup completed", zap.Int64("refresh_tokens", deleted))
}
