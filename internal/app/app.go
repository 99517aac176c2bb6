package app

import (
	"context"
	"time"

	"go-workforce/internal/audit"
	"go-workforce/internal/config"
	"go-workforce/internal/shared/connection"
	"go-workforce/internal/shared/i18n"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const connectRetries = 5

// Infra holds the shared connections of one process.
type Infra struct {
	DB    *gorm.DB
	Redis *redis.Client
	Mongo *mongo.Client
	Audit audit.Logger
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = i.Mongo.Disconnect(ctx)
	}
	if i.DB != nil {
		if sqlDB, err := i.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// connectInfra opens Postgres and the audit sink. Redis is optional and only
// dialed when withRedis is set and REDIS_ADDR is configured.
func connectInfra(cfg *config.Config, withRedis bool, logger *zap.Logger) (*Infra, error) {
	infra := &Infra{}

	db, err := connection.ConnectGORMWithRetry(cfg.DB, connectRetries)
	if err != nil {
		return nil, err
	}
	infra.DB = db

	if withRedis && cfg.Redis.Addr != "" {
		rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, connectRetries)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Redis = rdb
	}

	if cfg.Mongo.URI == "" {
		infra.Audit = audit.NewZapLogger(logger)
		return infra, nil
	}

	client, err := connection.ConnectMongo(cfg.Mongo.URI)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Mongo = client

	mongoAudit := audit.NewMongoLogger(client.Database(cfg.Mongo.Database), logger)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mongoAudit.EnsureIndexes(ctx); err != nil {
		logger.Warn("audit index creation failed", zap.Error(err))
	}
	infra.Audit = mongoAudit
	return infra, nil
}

// BuildApp connects the infrastructure, migrates the schema and mounts every
// module on router. The caller owns the returned Infra.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	if err := i18n.Init(cfg.DefaultLocale); err != nil {
		return nil, err
	}

	infra, err := connectInfra(cfg, true, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(infra.DB); err != nil {
		infra.Close()
		return nil, err
	}
	logger.Info("database schema migrated")

	if err := registerModules(router, cfg, infra, logger); err != nil {
		infra.Close()
		return nil, err
	}
	return infra, nil
}
