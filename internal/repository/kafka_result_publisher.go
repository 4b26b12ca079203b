package repository

import (
	"context"
	"fmt"
	"time"

	domrepo "PriceAnomaly/internal/domain/repository"
	pkgkafka "PriceAnomaly/pkg/kafka"
	applogger "PriceAnomaly/pkg/logger"

	"github.com/cenkalti/backoff/v4"
)

// HeaderType carries the payload kind ("result" or "error") on published messages.
const HeaderType = "type"

// MessagePublisher is the part of pkg/kafka.Producer the publisher needs.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}, headers ...pkgkafka.Header) error
	Close() error
}

// KafkaResultPublisher implements ResultPublisher for Kafka, retrying failed
// writes with exponential backoff.
type KafkaResultPublisher struct {
	producer MessagePublisher
	topic    string
	attempts int
	maxWait  time.Duration
	logger   *applogger.Logger
}

// NewKafkaResultPublisher creates Kafka publisher. attempts < 1 means a single try.
func NewKafkaResultPublisher(producer MessagePublisher, topic string, attempts int, maxWait time.Duration, logger *applogger.Logger) *KafkaResultPublisher {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &KafkaResultPublisher{producer: producer, topic: topic, attempts: max(1, attempts), maxWait: maxWait, logger: logger}
}

func (p *KafkaResultPublisher) PublishResult(ctx context.Context, key []byte, kind string, payload interface{}) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	if p.maxWait > 0 {
		b.MaxInterval = p.maxWait
	}
	b.MaxElapsedTime = 0
	b.Reset()
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.attempts-1)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		return p.producer.Publish(ctx, p.topic, key, payload, pkgkafka.Header{Key: HeaderType, Value: kind})
	}, policy)
	if err != nil {
		p.logger.Error("publish result failed",
			applogger.String("topic", p.topic),
			applogger.String("kind", kind),
			applogger.Int("attempts", attempt),
			applogger.Error(err),
		)
		return fmt.Errorf("publish %s to %s: %w", kind, p.topic, err)
	}
	return nil
}

func (p *KafkaResultPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.ResultPublisher = (*KafkaResultPublisher)(nil)
