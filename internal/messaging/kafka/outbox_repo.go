package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"

	// MaxRetries is the number of failed publishes after which an event is
	// left for manual inspection.
	MaxRetries = 10
)

type OutboxEvent struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	RequestID     string     `gorm:"column:request_id;type:varchar(64)"`
	AggregateType string     `gorm:"column:aggregate_type;type:varchar(50);not null"`
	AggregateID   string     `gorm:"column:aggregate_id;type:varchar(64);not null"`
	EventType     string     `gorm:"column:event_type;type:varchar(100);not null"`
	Topic         string     `gorm:"column:topic;type:varchar(150);not null"`
	Payload       []byte     `gorm:"column:payload;type:jsonb;not null"`
	Status        string     `gorm:"column:status;type:varchar(20);not null;default:'pending';index:idx_outbox_status_retry"`
	RetryCount    int        `gorm:"column:retry_count;not null;default:0"`
	NextRetryAt   *time.Time `gorm:"column:next_retry_at;index:idx_outbox_status_retry"`
	ErrorMessage  *string    `gorm:"column:error_message;type:varchar(500)"`
	ProcessedAt   *time.Time `gorm:"column:processed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

// NewOutboxEvent marshals payload into a pending event.
func NewOutboxEvent(requestID, aggregateType, aggregateID, eventType, topic string, payload any) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal outbox payload: %w", err)
	}
	return OutboxEvent{
		ID:            uuid.New(),
		RequestID:     requestID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        OutboxStatusPending,
	}, nil
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock
type OutboxRepository interface {
	WithTx(tx *gorm.DB) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *gorm.DB) OutboxRepository {
	return &outboxRepository{db: tx}
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&event).Error
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	var events []OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{OutboxStatusPending, OutboxStatusFailed}).
		Where("retry_count < ?", MaxRetries).
		Where("next_retry_at IS NULL OR next_retry_at <= NOW()").
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        OutboxStatusSent,
			"processed_at":  gorm.Expr("NOW()"),
			"error_message": nil,
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	if len(reason) > 500 {
		reason = reason[:500]
	}
	return r.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        OutboxStatusFailed,
			"retry_count":   gorm.Expr("retry_count + 1"),
			"error_message": reason,
			"next_retry_at": gorm.Expr("NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds')"),
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == uuid.Nil {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
