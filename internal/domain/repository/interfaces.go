package repository

import "context"

// Metrics records engine level measurements.
type Metrics interface {
	RecordDetection(method string, points, anomalies int, seconds float64)
	RecordError(kind string)
	RecordCacheLookup(layer string, hit bool)
	RecordLatency(op string, seconds float64)
}

// ResultPublisher delivers detection results to an asynchronous consumer.
type ResultPublisher interface {
	PublishResult(ctx context.Context, key []byte, kind string, payload interface{}) error
	Close() error
}
