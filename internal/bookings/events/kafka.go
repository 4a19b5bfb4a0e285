package events

import (
	"context"
	"fmt"

	"slotkeeper/pkg/kafka"
	kafka_middleware "slotkeeper/pkg/kafka/middleware"
	"slotkeeper/pkg/logger"
)

type kafkaProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaPublisher keys every event by booking id so all events of one
// booking land on the same partition in order.
type KafkaPublisher struct {
	producer kafkaProducer
	metrics  *kafka_middleware.Metrics
	log      *logger.Logger
}

func NewKafkaPublisher(producer kafkaProducer, metrics *kafka_middleware.Metrics, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, metrics: metrics, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.Booking.ID).
		WithValue(event).
		WithHeader(kafka.HeaderEventID, event.ID).
		WithEventType(event.Type).
		WithCorrelationID(event.CorrelationID).
		WithSource(Source).
		WithSchemaVersion(SchemaVersion).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s message: %w", event.Type, err)
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	if p.metrics != nil {
		snapshot := p.metrics.Snapshot()
		p.log.Info("Kafka producer totals",
			"published", snapshot.Published,
			"failed", snapshot.Failed,
			"avg_publish_duration", snapshot.AvgPublishDuration,
		)
	}
	return p.producer.Close()
}
