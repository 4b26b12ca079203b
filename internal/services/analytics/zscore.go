package analytics

import (
	"context"
	"math"

	"PriceAnomaly/internal/domain/models"
	domsvc "PriceAnomaly/internal/domain/service"
	"PriceAnomaly/internal/services/features"
)

const (
	zBaseThreshold = 3.0
	zVolScale      = 10.0
	zMinThreshold  = 2.5
	zMaxThreshold  = 4.0
)

// ZScoreDetector flags prices far from an exponentially weighted local mean,
// using a threshold that widens with the series' own volatility.
type ZScoreDetector struct {
	cache domsvc.ZScoreCache
}

// NewZScoreDetector creates the detector. cache may be nil.
func NewZScoreDetector(cache domsvc.ZScoreCache) *ZScoreDetector {
	return &ZScoreDetector{cache: cache}
}

func (d *ZScoreDetector) Method() models.DetectionMethod { return models.MethodZScore }

func (d *ZScoreDetector) Detect(ctx context.Context, series models.PriceSeries, window int) models.Detection {
	prices := series.Prices()
	window = fitWindow(window, len(prices))

	zs := d.Scores(ctx, prices, window)
	flags := make([]bool, len(prices))
	for i := range prices {
		flags[i] = zs.Scores[i] > zs.Thresholds[i]
	}

	threshold := zMinThreshold
	if len(zs.Thresholds) > 0 {
		threshold = zs.Thresholds[len(zs.Thresholds)-1]
	}
	maxZ := 0.0
	for _, z := range zs.Scores {
		maxZ = math.Max(maxZ, z)
	}

	return models.Detection{
		Flags:      flags,
		References: zs.Thresholds,
		Stats: map[string]float64{
			"mean":               features.OrDefault(features.Mean(prices), 0),
			"std":                features.OrDefault(features.PopulationStd(prices), 0),
			"max_zscore":         maxZ,
			"adaptive_threshold": threshold,
			"volatility":         returnsVolatility(prices),
			"window_size":        float64(window),
		},
	}
}

// Scores returns the z-scores and thresholds, served from cache when possible.
func (d *ZScoreDetector) Scores(ctx context.Context, prices []float64, window int) models.ZScores {
	if d.cache != nil {
		if zs, ok := d.cache.Get(ctx, prices, window); ok && len(zs.Scores) == len(prices) && len(zs.Thresholds) == len(prices) {
			return zs
		}
	}
	zs := ComputeZScores(prices, window)
	if d.cache != nil {
		d.cache.Put(ctx, prices, window, zs)
	}
	return zs
}

// ExponentialWeights returns exp(linspace(-1, 0, window)) normalized to sum 1,
// so the most recent position carries the largest weight.
func ExponentialWeights(window int) []float64 {
	w := make([]float64, window)
	if window == 1 {
		w[0] = 1
		return w
	}
	sum := 0.0
	for k := range w {
		w[k] = math.Exp(-1 + float64(k)/float64(window-1))
		sum += w[k]
	}
	for k := range w {
		w[k] /= sum
	}
	return w
}

// ComputeZScores scores every index i >= window against the weighted
// mean/std of the `window` prices before it. Earlier indices score 0.
func ComputeZScores(prices []float64, window int) models.ZScores {
	n := len(prices)
	scores := make([]float64, n)
	thresholds := make([]float64, n)

	weights := ExponentialWeights(window)
	for i := window; i < n; i++ {
		past := prices[i-window : i]
		// Work relative to the first price so a flat window has exactly zero spread.
		anchor := past[0]
		mean := 0.0
		for k, p := range past {
			mean += weights[k] * (p - anchor)
		}
		variance := 0.0
		for k, p := range past {
			dev := p - anchor - mean
			variance += weights[k] * dev * dev
		}
		std := math.Sqrt(variance)
		if std > 0 {
			scores[i] = math.Abs(prices[i]-anchor-mean) / std
		}
	}

	threshold := features.Clamp(zBaseThreshold+returnsVolatility(prices)*zVolScale, zMinThreshold, zMaxThreshold)
	for i := range thresholds {
		thresholds[i] = threshold
	}
	return models.ZScores{Scores: scores, Thresholds: thresholds}
}

// returnsVolatility is the population std of one-period percentage changes.
func returnsVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	return features.OrDefault(features.PopulationStd(features.PctChange(prices, 1)), 0)
}

// fitWindow narrows a window the series cannot support, as the validator does.
func fitWindow(window, n int) int {
	if window > n {
		window = min(n-1, window)
	}
	return max(2, window)
}

var _ domsvc.Detector = (*ZScoreDetector)(nil)
