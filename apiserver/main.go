package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/greenorbit/phaseout/internal/signals"
	"github.com/greenorbit/phaseout/internal/version"
)

func main() {
	// A .env file is a development convenience. Absence is not an error.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() // nolint: errcheck

	ctx := signals.Context()

	logger.Info(
		"starting phaseout API server",
		zap.String("version", version.Version()),
		zap.String("commit", version.Commit()),
	)

	apiServer, err := getAPIServerFromEnvironment(ctx, logger)
	if err != nil {
		logger.Fatal("error initializing API server", zap.Error(err))
	}

	logger.Fatal(
		"API server stopped",
		zap.Error(apiServer.ListenAndServe()),
	)
}
