package producer

import (
	"context"
	"time"

	"go-workforce/internal/messaging/kafka"

	"go.uber.org/zap"
)

const batchSize = 50

// ProcessOutboxEvents relays pending outbox rows to Kafka until ctx is done.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	if logger == nil {
		logger = zap.L()
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox worker started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if _, err := processPendingEvents(ctx, repo, writer, log); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		}
	}
}

// processPendingEvents publishes one batch and returns how many were sent.
func processPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
) (int, error) {
	events, err := repo.ListPending(ctx, batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	logger.Debug("processing pending outbox events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		if err := publishEvent(ctx, writer, event); err != nil {
			logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID.String()),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID.String()), zap.Error(markErr))
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID.String()),
				zap.Error(err),
			)
			continue
		}
		sent++

		logger.Info("outbox event sent",
			zap.String("outbox_id", event.ID.String()),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
		)
	}

	return sent, nil
}
