package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shareit/service-shareit/internal/config"
	"github.com/shareit/service-shareit/internal/pkg/database"
	"github.com/shareit/service-shareit/internal/pkg/logger"
	"github.com/shareit/service-shareit/internal/repository"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "seed-shareit")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(repository.AllModels()...); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, items, err := repository.Seed(ctx, db, repository.DefaultDemoData, time.Now().UTC())
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("demo data seeded", zap.Int("users", users), zap.Int("items", items))
}
