package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"PriceAnomaly/pkg/util"
)

// Requests and responses for the detection transports (HTTP and Kafka).

// Timestamp accepts RFC3339 strings or unix seconds/milliseconds on the wire.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, ok := util.ParseTime(s)
		if !ok {
			return fmt.Errorf("invalid timestamp %q", s)
		}
		t.Time = parsed
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("invalid timestamp %s", b)
	}
	parsed, ok := util.FromUnix(f)
	if !ok {
		return fmt.Errorf("invalid timestamp %s", b)
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time)
}

type PricePointRequest struct {
	Timestamp *Timestamp `json:"timestamp" validate:"required"`
	Price     *float64   `json:"price" validate:"required"`
}

type DetectRequest struct {
	Prices     []PricePointRequest `json:"prices" validate:"dive"`
	Method     string              `json:"method" validate:"omitempty,oneof=zscore moving_avg rate_of_change"`
	WindowSize *int                `json:"window_size" validate:"omitempty,gt=1"`
}

// ToDomain converts a validated wire request. Series rules are checked later by
// the engine, which also fills an omitted method or window with its defaults.
func (r *DetectRequest) ToDomain() DetectionRequest {
	series := make(PriceSeries, 0, len(r.Prices))
	for _, p := range r.Prices {
		var pt PricePoint
		if p.Timestamp != nil {
			pt.Timestamp = p.Timestamp.Time
		}
		if p.Price != nil {
			pt.Price = *p.Price
		}
		series = append(series, pt)
	}
	var window int
	if r.WindowSize != nil {
		window = *r.WindowSize
	}
	return DetectionRequest{Series: series, Method: DetectionMethod(r.Method), WindowSize: window}
}

type DetectResponse struct {
	Timestamps      []time.Time        `json:"timestamps"`
	Prices          []float64          `json:"prices"`
	IsAnomaly       []bool             `json:"is_anomaly"`
	ThresholdValues []float64          `json:"threshold_values"`
	Method          string             `json:"method"`
	Stats           map[string]float64 `json:"stats"`
}

func NewDetectResponse(res *AnomalyResult) DetectResponse {
	return DetectResponse{
		Timestamps:      res.Timestamps,
		Prices:          res.Prices,
		IsAnomaly:       res.IsAnomaly,
		ThresholdValues: res.References,
		Method:          string(res.Method),
		Stats:           res.Stats,
	}
}

// ErrorResponse is the body of every failed detection.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Type   string `json:"type"`
	Path   string `json:"path"`
}

type MethodInfo struct {
	Method    string `json:"method"`
	Reference string `json:"reference"`
}

// ReferenceSemantics documents what threshold_values means for each method.
var ReferenceSemantics = map[DetectionMethod]string{
	MethodZScore:       "adaptive z-score threshold, identical for every point",
	MethodMovingAvg:    "exponential moving average trend line",
	MethodRateOfChange: "one-period percentage change",
}
