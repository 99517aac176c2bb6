package audit

import (
	"context"
	"time"

	"go-workforce/internal/shared/contextutil"

	"go.uber.org/zap"
)

// ZapLogger writes audit entries as structured log lines.
type ZapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(logger ...*zap.Logger) *ZapLogger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &ZapLogger{logger: l}
}

func (l *ZapLogger) Log(ctx context.Context, entry Entry) {
	entry = stamp(entry)
	l.logger.Info("audit event",
		zap.String("timestamp", entry.OccurredAt.Format(time.RFC3339)),
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("action", entry.Action),
		zap.String("actor_id", entry.ActorID),
		zap.String("entity_type", entry.EntityType),
		zap.String("entity_id", entry.EntityID),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
