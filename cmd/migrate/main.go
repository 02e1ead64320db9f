package main

import (
	"flag"
	"fmt"
	"os"

	"finlearn/internal/config"
	"finlearn/internal/database"
	"finlearn/internal/logger"

	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of applying all")
	dir := flag.String("dir", "", "migrations directory (defaults to db.migrations_path)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	path := cfg.DB.MigrationsPath
	if *dir != "" {
		path = *dir
	}
	direction := database.Up
	if *down {
		direction = database.Down
	}

	if err := database.RunMigrations(cfg.GetMigrateURL(), path, direction); err != nil {
		logger.Get().Fatal("Failed to run migrations", zap.Error(err))
	}
}
