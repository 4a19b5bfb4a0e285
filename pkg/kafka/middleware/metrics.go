package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"slotkeeper/pkg/kafka"
)

// Metrics counts producer activity. The zero value is ready to use.
type Metrics struct {
	published     atomic.Int64
	failed        atomic.Int64
	totalDuration atomic.Int64 // nanoseconds
}

type MetricsSnapshot struct {
	Published          int64
	Failed             int64
	AvgPublishDuration time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	published := m.published.Load()
	failed := m.failed.Load()

	var avg time.Duration
	if total := published + failed; total > 0 {
		avg = time.Duration(m.totalDuration.Load() / total)
	}
	return MetricsSnapshot{Published: published, Failed: failed, AvgPublishDuration: avg}
}

func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.totalDuration.Add(int64(time.Since(start)))
		if err != nil {
			m.failed.Add(1)
		} else {
			m.published.Add(1)
		}
		return err
	}
}
