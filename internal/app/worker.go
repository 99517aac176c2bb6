package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-workforce/internal/config"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/messaging/kafka/producer"
	"go-workforce/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays the transactional outbox to Kafka until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, connectRetries)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, connectRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, cfg.OutboxInterval)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()
	<-done

	return nil
}
