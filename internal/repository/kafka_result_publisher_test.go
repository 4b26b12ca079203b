package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgkafka "PriceAnomaly/pkg/kafka"
)

type recordingProducer struct {
	failFirst int
	calls     int
	headers   []pkgkafka.Header
	key       []byte
	topic     string
}

func (p *recordingProducer) Publish(_ context.Context, topic string, key []byte, _ interface{}, headers ...pkgkafka.Header) error {
	p.calls++
	p.topic, p.key, p.headers = topic, key, headers
	if p.calls <= p.failFirst {
		return errors.New("leader not available")
	}
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func TestPublishResultRetries(t *testing.T) {
	prod := &recordingProducer{failFirst: 2}
	pub := NewKafkaResultPublisher(prod, "anomaly-results", 3, time.Millisecond, nil)

	if err := pub.PublishResult(context.Background(), []byte("k1"), "result", map[string]int{"n": 1}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if prod.calls != 3 {
		t.Fatalf("calls = %d, want 3", prod.calls)
	}
	if prod.topic != "anomaly-results" || string(prod.key) != "k1" {
		t.Fatalf("topic=%s key=%s", prod.topic, prod.key)
	}
	if len(prod.headers) != 1 || prod.headers[0].Key != HeaderType || prod.headers[0].Value != "result" {
		t.Fatalf("headers = %+v", prod.headers)
	}
}

func TestPublishResultGivesUp(t *testing.T) {
	prod := &recordingProducer{failFirst: 10}
	pub := NewKafkaResultPublisher(prod, "anomaly-results", 2, time.Millisecond, nil)
	if err := pub.PublishResult(context.Background(), nil, "error", "x"); err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if prod.calls != 2 {
		t.Fatalf("calls = %d, want 2", prod.calls)
	}
}
