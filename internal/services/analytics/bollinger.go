package analytics

import (
	"context"
	"math"

	"PriceAnomaly/internal/domain/models"
	domsvc "PriceAnomaly/internal/domain/service"
	"PriceAnomaly/internal/services/features"
)

const (
	bandMultiplier = 2.0
	rsiOverbought  = 70.0
	rsiOversold    = 30.0
	rsiNeutral     = 50.0
)

// BollingerRSIDetector flags prices outside EMA +/- 2 sigma bands while the
// RSI is overbought or oversold. Both signals must agree.
type BollingerRSIDetector struct{}

func NewBollingerRSIDetector() *BollingerRSIDetector { return &BollingerRSIDetector{} }

func (d *BollingerRSIDetector) Method() models.DetectionMethod { return models.MethodMovingAvg }

func (d *BollingerRSIDetector) Detect(_ context.Context, series models.PriceSeries, window int) models.Detection {
	prices := series.Prices()
	window = fitWindow(window, len(prices))

	trend := features.EMA(prices, window)
	sigma := features.CenteredRollingStd(prices, window, 2)
	rsi := RSI(prices, window)

	n := len(prices)
	flags := make([]bool, n)
	upper := make([]float64, n)
	lower := make([]float64, n)
	deviations := make([]float64, n)
	for i, p := range prices {
		upper[i] = trend[i] + sigma[i]*bandMultiplier
		lower[i] = trend[i] - sigma[i]*bandMultiplier
		deviations[i] = math.Abs(p - trend[i])

		if !features.IsDefined(sigma[i]) || !features.IsDefined(rsi[i]) {
			continue
		}
		outside := p > upper[i] || p < lower[i]
		extreme := rsi[i] > rsiOverbought || rsi[i] < rsiOversold
		flags[i] = outside && extreme
	}

	lastTrend := trend[n-1]
	return models.Detection{
		Flags:      flags,
		References: trend,
		Stats: map[string]float64{
			"avg_deviation": features.OrDefault(features.Mean(deviations), 0),
			"max_deviation": features.OrDefault(features.MaxAbs(deviations), 0),
			"upper_band":    features.OrDefault(upper[n-1], lastTrend),
			"lower_band":    features.OrDefault(lower[n-1], lastTrend),
			"current_rsi":   features.OrDefault(rsi[n-1], rsiNeutral),
			"window_size":   float64(window),
		},
	}
}

// RSI uses simple rolling means of gains and losses (min 2 samples). With
// no losses it is 100 if there were gains and undefined otherwise.
func RSI(prices []float64, window int) []float64 {
	n := len(prices)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains[i] = delta
		} else if delta < 0 {
			losses[i] = -delta
		}
	}
	avgGain := features.RollingMean(gains, window, 2)
	avgLoss := features.RollingMean(losses, window, 2)

	out := make([]float64, n)
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case !features.IsDefined(g) || !features.IsDefined(l):
			out[i] = math.NaN()
		case l == 0 && g > 0:
			out[i] = 100
		case l == 0:
			out[i] = math.NaN()
		default:
			out[i] = 100 - 100/(1+g/l)
		}
	}
	return out
}

var _ domsvc.Detector = (*BollingerRSIDetector)(nil)
