// Package events announces booking lifecycle changes to an external
// notifier. Delivery is best effort: a failed publish never fails the
// booking operation that caused it.
package events

import (
	"context"
	"fmt"
	"time"

	"slotkeeper/pkg/config"
	"slotkeeper/pkg/kafka"
	kafka_config "slotkeeper/pkg/kafka/config"
	kafka_middleware "slotkeeper/pkg/kafka/middleware"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"
	"slotkeeper/pkg/rabbitmq"

	"github.com/google/uuid"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"

	Source        = "slotkeeper"
	SchemaVersion = "1"
)

type Event struct {
	ID            string             `json:"id"`
	Type          string             `json:"type"`
	OccurredAt    time.Time          `json:"occurredAt"`
	CorrelationID string             `json:"correlationId,omitempty"`
	Booking       *model.BookingView `json:"booking"`
}

func NewEvent(eventType string, booking *model.BookingView, at time.Time, correlationID string) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		OccurredAt:    at.UTC(),
		CorrelationID: correlationID,
		Booking:       booking,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// New returns the publisher selected by cfg.EventsBackend.
func New(cfg *config.Config, log *logger.Logger) (Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsBackendNone, "":
		return NoopPublisher{}, nil

	case config.EventsBackendKafka:
		kafkaCfg, err := kafka_config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load kafka config: %w", err)
		}
		kafkaCfg.LogConfiguration(log)

		producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaTopic, cfg.KafkaDLQTopic, log)
		if err != nil {
			return nil, err
		}
		metrics := &kafka_middleware.Metrics{}
		producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
		return NewKafkaPublisher(producer, metrics, log), nil

	case config.EventsBackendRabbitMQ:
		publisher, err := rabbitmq.Dial(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
		if err != nil {
			return nil, err
		}
		return NewRabbitMQPublisher(publisher), nil

	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
