package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/mkeren/finsight-backend/internal/api"
	"github.com/mkeren/finsight-backend/internal/application/service"
	"github.com/mkeren/finsight-backend/internal/infrastructure/config"
	"github.com/mkeren/finsight-backend/internal/infrastructure/logging"
	"github.com/mkeren/finsight-backend/internal/infrastructure/storage"
)

func main() {
	// Load .env for local development; in production the environment is set
	// by the deployment.
	_ = godotenv.Load()

	configPath := os.Getenv("FINSIGHT_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg := config.LoadOrEnvWithPath(configPath)

	logger := logging.NewLoggerWithComponent(cfg.Observability.Logging, "api")

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err, "path", cfg.Storage.DatabasePath)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	svc := service.New(cfg, store, logger)
	server := api.NewServer(cfg, svc, logger)

	if err := server.Run(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
