package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-workforce/internal/access"
	"go-workforce/internal/events"
	"go-workforce/internal/leave"
	leaveerrors "go-workforce/internal/leave/errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// MessageReader is satisfied by *kafkago.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type LeaveBackfiller interface {
	Backfill(ctx context.Context, caller access.Caller, id string) (leave.BackfillResponse, error)
}

// ConsumeLeaveApproved makes sure every approved leave ends up marked on
// attendance. A message is committed once its backfill succeeds or can never
// succeed; transient failures are retried in place.
func ConsumeLeaveApproved(
	ctx context.Context,
	reader MessageReader,
	backfiller LeaveBackfiller,
	logger *zap.Logger,
) {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("kafka.consumer.leave_approved")
	log.Info("leave approved consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave approved consumer stopped")
				return
			}
			log.Error("fetch leave approved message failed", zap.Error(err))
			continue
		}

		if !handleLeaveApproved(ctx, msg, backfiller, log) {
			log.Info("leave approved consumer stopped before commit")
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave approved message failed", zap.Error(err))
			continue
		}
	}
}

// handleLeaveApproved returns false only when ctx ended before the message
// could be settled.
func handleLeaveApproved(
	ctx context.Context,
	msg kafkago.Message,
	backfiller LeaveBackfiller,
	log *zap.Logger,
) bool {
	var event events.LeaveApprovedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode leave approved event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return true
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		resp, err := backfiller.Backfill(ctx, access.System(), event.LeaveID)
		if err == nil {
			log.Info("leave attendance backfilled from event",
				zap.String("leave_id", event.LeaveID),
				zap.String("employee_id", event.EmployeeID),
				zap.Int("days", resp.Days),
				zap.Int("days_changed", resp.DaysChanged),
			)
			return true
		}
		if isPermanent(err) {
			log.Warn("leave approved event skipped",
				zap.String("leave_id", event.LeaveID),
				zap.Error(err),
			)
			return true
		}

		log.Error("backfill from event failed, retrying",
			zap.String("leave_id", event.LeaveID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, leaveerrors.ErrLeaveNotFound) ||
		errors.Is(err, leaveerrors.ErrNotApproved) ||
		errors.Is(err, leaveerrors.ErrInvalidLeaveID)
}
