package usecase

import (
	"math"

	"PriceAnomaly/internal/domain/models"
)

// AssembleResult shapes one detector's output into the uniform envelope.
// Length or finiteness violations are detector bugs and surface as
// ErrInternalConsistency.
func AssembleResult(series models.PriceSeries, method models.DetectionMethod, det models.Detection) (*models.AnomalyResult, error) {
	n := len(series)
	if len(det.Flags) != n || len(det.References) != n {
		return nil, models.InternalConsistencyf("%s produced %d flags and %d references for %d points",
			method, len(det.Flags), len(det.References), n)
	}
	for i, r := range det.References {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, models.InternalConsistencyf("%s produced a non-finite reference at index %d", method, i)
		}
	}

	stats := make(map[string]float64, len(det.Stats))
	for k, v := range det.Stats {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, models.InternalConsistencyf("%s produced a non-finite %s statistic", method, k)
		}
		stats[k] = v
	}

	return &models.AnomalyResult{
		Timestamps: series.Timestamps(),
		Prices:     series.Prices(),
		IsAnomaly:  append([]bool(nil), det.Flags...),
		References: append([]float64(nil), det.References...),
		Method:     method,
		Stats:      stats,
	}, nil
}
