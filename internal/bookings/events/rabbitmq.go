package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type rabbitMQPublisher interface {
	Publish(ctx context.Context, routingKey, messageID string, body []byte, headers map[string]string) error
	Close() error
}

// RabbitMQPublisher routes each event by its type, so consumers bind to
// "booking.*" or a single event type.
type RabbitMQPublisher struct {
	publisher rabbitMQPublisher
}

func NewRabbitMQPublisher(publisher rabbitMQPublisher) *RabbitMQPublisher {
	return &RabbitMQPublisher{publisher: publisher}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}

	headers := map[string]string{
		"event-type":     event.Type,
		"source":         Source,
		"schema-version": SchemaVersion,
		"timestamp":      event.OccurredAt.Format(time.RFC3339),
	}
	if event.CorrelationID != "" {
		headers["correlation-id"] = event.CorrelationID
	}
	return p.publisher.Publish(ctx, event.Type, event.ID, body, headers)
}

func (p *RabbitMQPublisher) Close() error {
	return p.publisher.Close()
}
