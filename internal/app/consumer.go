package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-workforce/internal/attendance"
	"go-workforce/internal/config"
	"go-workforce/internal/events"
	"go-workforce/internal/leave"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/messaging/kafka/consumer"
	"go-workforce/internal/shared/connection"

	"go.uber.org/zap"
)

// RunConsumer replays leave approvals onto attendance until SIGINT or SIGTERM.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	deps, err := connectInfra(cfg, false, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	attendanceService := attendance.NewService(
		attendance.NewRepository(deps.DB),
		attendance.Options{Location: cfg.Location(), CheckInClearsLeave: cfg.CheckInClearsLeave},
		deps.Audit,
		logger,
	)
	leaveService := leave.NewService(
		deps.DB,
		leave.NewRepository(deps.DB),
		kafka.NewOutboxRepository(deps.DB),
		attendanceService,
		deps.Audit,
		logger,
	)

	reader := connection.NewKafkaReader(cfg.Kafka.Broker, events.LeaveApprovedTopic, cfg.Kafka.LeaveGroup)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		consumer.ConsumeLeaveApproved(ctx, reader, leaveService, logger)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	<-done

	return nil
}
