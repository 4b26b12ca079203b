package analytics

import (
	"context"
	"math"

	"PriceAnomaly/internal/domain/models"
	domsvc "PriceAnomaly/internal/domain/service"
	"PriceAnomaly/internal/services/features"
)

const (
	rocBaseRate      = 0.05
	rocMediumFactor  = 0.8
	rocMomentumRatio = 0.5
)

// RateOfChangeDetector flags one-period moves that are large relative to the
// series' rolling volatility, confirmed by a medium horizon move and a
// MACD/signal divergence.
type RateOfChangeDetector struct{}

func NewRateOfChangeDetector() *RateOfChangeDetector { return &RateOfChangeDetector{} }

func (d *RateOfChangeDetector) Method() models.DetectionMethod { return models.MethodRateOfChange }

// Horizons returns the medium and long periods derived from window.
func Horizons(window int) (medium, long int) {
	return max(2, window/4), max(2, window/2)
}

func (d *RateOfChangeDetector) Detect(_ context.Context, series models.PriceSeries, window int) models.Detection {
	prices := series.Prices()
	window = fitWindow(window, len(prices))

	medium, long := Horizons(window)
	rocShort := features.PctChange(prices, 1)
	rocMedium := features.PctChange(prices, medium)
	rocLong := features.PctChange(prices, long)

	emaShort := features.EMA(prices, features.ClampInt(window, 2, 12))
	emaLong := features.EMA(prices, features.ClampInt(window, 3, 26))
	macd := make([]float64, len(prices))
	for i := range macd {
		macd[i] = emaShort[i] - emaLong[i]
	}
	signal := features.EMA(macd, features.ClampInt(window, 2, 9))

	volatility := features.RollingStd(rocShort, window, 2)

	n := len(prices)
	flags := make([]bool, n)
	references := make([]float64, n)
	thresholds := make([]float64, n)
	for i := range prices {
		references[i] = features.OrDefault(rocShort[i], 0)
		thresholds[i] = rocBaseRate * (1 + volatility[i])

		if !features.IsDefined(thresholds[i]) || !features.IsDefined(rocShort[i]) || !features.IsDefined(rocMedium[i]) {
			continue
		}
		flags[i] = math.Abs(rocShort[i]) > thresholds[i] &&
			math.Abs(rocMedium[i]) > thresholds[i]*rocMediumFactor &&
			math.Abs(macd[i]-signal[i]) > math.Abs(signal[i])*rocMomentumRatio
	}

	return models.Detection{
		Flags:      flags,
		References: references,
		Stats: map[string]float64{
			"max_change":         features.OrDefault(features.MaxAbs(rocShort), 0),
			"avg_change":         features.OrDefault(meanAbs(rocShort), 0),
			"volatility":         features.OrDefault(volatility[n-1], 0),
			"macd":               macd[n-1],
			"signal":             signal[n-1],
			"adaptive_threshold": features.OrDefault(thresholds[n-1], rocBaseRate),
			"long_change":        features.OrDefault(rocLong[n-1], 0),
			"window_size":        float64(window),
		},
	}
}

func meanAbs(xs []float64) float64 {
	abs := make([]float64, len(xs))
	for i, v := range xs {
		abs[i] = math.Abs(v)
	}
	return features.Mean(abs)
}

var _ domsvc.Detector = (*RateOfChangeDetector)(nil)
