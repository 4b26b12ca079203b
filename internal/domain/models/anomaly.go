package models

import "time"

// Detection is the raw output of one detector: per-point flags, per-point
// reference values and method specific statistics.
type Detection struct {
	Flags      []bool
	References []float64
	Stats      map[string]float64
}

// ZScores is the memoized part of the z-score detector.
type ZScores struct {
	Scores     []float64 `json:"scores"`
	Thresholds []float64 `json:"thresholds"`
}

// AnomalyResult is the uniform envelope returned for every method.
//
// References differ per method:
//   - zscore: the adaptive threshold broadcast to every point
//   - moving_avg: the EMA trend line
//   - rate_of_change: the one-period percentage change
type AnomalyResult struct {
	Timestamps []time.Time
	Prices     []float64
	IsAnomaly  []bool
	References []float64
	Method     DetectionMethod
	Stats      map[string]float64
}

// AnomalyCount returns the number of flagged points.
func (r *AnomalyResult) AnomalyCount() int {
	n := 0
	for _, f := range r.IsAnomaly {
		if f {
			n++
		}
	}
	return n
}
