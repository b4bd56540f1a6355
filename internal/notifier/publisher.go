// Package notifier delivers outbox events to the notification topic.
// Rendering events into user-facing messages (chat pushes, email) is
// a downstream consumer's job.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mapuy555/warranty-server/internal/entity"

	"github.com/segmentio/kafka-go"
)

type Publisher interface {
	Publish(ctx context.Context, event *entity.NotificationEvent) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish keys by recipient so each user's notifications land on one
// partition and stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, event *entity.NotificationEvent) error {
	const op = "notifier.KafkaPublisher.Publish"

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: marshal event: %w", op, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Recipient),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "event_id", Value: []byte(event.EventID.String())},
		},
	}

	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%s: write message: %w", op, err)
	}

	return nil
}
