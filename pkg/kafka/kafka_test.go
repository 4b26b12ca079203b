package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type flakyHandler struct {
	failures int
	calls    int
	panics   bool
}

func (h *flakyHandler) Topic() string { return "requests" }

func (h *flakyHandler) Handle(_ context.Context, _, _ []byte) error {
	h.calls++
	if h.panics {
		panic("bad payload")
	}
	if h.calls <= h.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestConsumer(t *testing.T, retries int) *Consumer {
	t.Helper()
	c, err := NewConsumer(nil,
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retries, time.Millisecond, 2*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return c
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(nil); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestProcessRetriesUntilSuccess(t *testing.T) {
	c := newTestConsumer(t, 3)
	h := &flakyHandler{failures: 2}
	c.process(h, kafka.Message{Topic: "requests"})
	if h.calls != 3 {
		t.Fatalf("calls = %d, want 3", h.calls)
	}
}

func TestProcessGivesUpAfterRetryMax(t *testing.T) {
	c := newTestConsumer(t, 2)
	h := &flakyHandler{failures: 100}
	c.process(h, kafka.Message{Topic: "requests"})
	if h.calls != 3 {
		t.Fatalf("calls = %d, want 1 attempt + 2 retries", h.calls)
	}
}

func TestProcessDoesNotRetryPanics(t *testing.T) {
	c := newTestConsumer(t, 5)
	h := &flakyHandler{panics: true}
	c.process(h, kafka.Message{Topic: "requests"})
	if h.calls != 1 {
		t.Fatalf("calls = %d, want 1", h.calls)
	}
}

func TestEncode(t *testing.T) {
	b, err := encode(map[string]int{"a": 1})
	if err != nil || string(b) != `{"a":1}` {
		t.Fatalf("encode = %s, %v", b, err)
	}
	if b, _ := encode("raw"); string(b) != "raw" {
		t.Fatalf("strings are sent as is, got %s", b)
	}
	if _, err := encode(func() {}); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestParseCompression(t *testing.T) {
	if parseCompression("zstd") != kafka.Zstd || parseCompression("unknown") != kafka.Snappy {
		t.Fatalf("unexpected compression mapping")
	}
}
