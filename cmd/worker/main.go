package main

import (
	"go-workforce/internal/app"
	"go-workforce/internal/config"
	"go-workforce/internal/shared/apperror"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	newLogger := zap.NewDevelopment
	if cfg.IsProduction() {
		newLogger = zap.NewProduction
	}
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	if err := app.RunWorker(cfg); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}
