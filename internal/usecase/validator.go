package usecase

import (
	"math"

	"PriceAnomaly/internal/domain/models"
)

// ValidateSeries enforces the series invariants and returns the window the
// detectors should use. An oversized window is narrowed to what the series
// supports rather than rejected.
func ValidateSeries(series models.PriceSeries, window int) (models.PriceSeries, int, error) {
	if len(series) < 2 {
		return nil, 0, models.InvalidInput("insufficient points")
	}
	for i := 1; i < len(series); i++ {
		if series[i].Timestamp.Before(series[i-1].Timestamp) {
			return nil, 0, models.InvalidInputf("out of order: timestamp at index %d precedes index %d", i, i-1)
		}
	}
	for i, p := range series {
		if p.Price <= 0 {
			return nil, 0, models.InvalidInputf("non-positive price at index %d", i)
		}
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return nil, 0, models.InvalidInputf("non-finite price at index %d", i)
		}
	}
	if window <= 1 {
		return nil, 0, models.InvalidInputf("window_size must be greater than 1, got %d", window)
	}
	if window > len(series) {
		window = max(2, min(len(series)-1, window))
	}
	return series, window, nil
}
