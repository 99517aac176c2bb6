package main

import (
	"go-workforce/internal/app"
	"go-workforce/internal/bootstrap"
	"go-workforce/internal/config"
	"go-workforce/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	infra, err := app.BuildApp(r, cfg, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer infra.Close()

	bootstrap.StartHTTPServer(r, bootstrap.DefaultServerConfig(cfg.Port), infra.Audit)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
