package models

import (
	"fmt"
	"time"
)

// DefaultWindowSize is used when a request does not carry a window.
const DefaultWindowSize = 20

// PricePoint is a single observation of a price series.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// PriceSeries is ordered by timestamp, oldest first. Callers own it; detectors only read it.
type PriceSeries []PricePoint

// Prices returns the price column.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// Timestamps returns the timestamp column.
func (s PriceSeries) Timestamps() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Timestamp
	}
	return out
}

// DetectionMethod selects the detection algorithm.
type DetectionMethod string

const (
	MethodZScore       DetectionMethod = "zscore"
	MethodMovingAvg    DetectionMethod = "moving_avg"
	MethodRateOfChange DetectionMethod = "rate_of_change"
)

// DefaultMethod is used when a request does not name one.
const DefaultMethod = MethodZScore

// Valid reports whether m names a known method.
func (m DetectionMethod) Valid() bool {
	switch m {
	case MethodZScore, MethodMovingAvg, MethodRateOfChange:
		return true
	default:
		return false
	}
}

// ParseDetectionMethod converts a raw string into a method. Empty means DefaultMethod.
func ParseDetectionMethod(s string) (DetectionMethod, error) {
	if s == "" {
		return DefaultMethod, nil
	}
	m := DetectionMethod(s)
	if !m.Valid() {
		return "", InvalidInputf("unsupported method %q", s)
	}
	return m, nil
}

// DetectionRequest is a transport-free detection request. A zero Method or
// WindowSize means "use the engine default".
type DetectionRequest struct {
	Series     PriceSeries
	Method     DetectionMethod
	WindowSize int
}

// String is used in log lines.
func (r DetectionRequest) String() string {
	return fmt.Sprintf("method=%s window=%d points=%d", r.Method, r.WindowSize, len(r.Series))
}
