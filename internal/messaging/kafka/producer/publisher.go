package producer

import (
	"context"

	"go-workforce/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafkago.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func toMessage(event kafka.OutboxEvent) kafkago.Message {
	return kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
			{Key: "request_id", Value: []byte(event.RequestID)},
		},
	}
}

func publishEvent(ctx context.Context, writer MessageWriter, event kafka.OutboxEvent) error {
	return writer.WriteMessages(ctx, toMessage(event))
}
