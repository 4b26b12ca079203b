package service

import (
	"context"

	"PriceAnomaly/internal/domain/models"
)

// Detector is one anomaly detection strategy. Implementations never fail:
// degenerate arithmetic is guarded inline and undefined points are reported
// as not anomalous.
type Detector interface {
	Method() models.DetectionMethod
	Detect(ctx context.Context, series models.PriceSeries, window int) models.Detection
}

// ZScoreCache memoizes z-score computations by price content and window.
// Misses and backend errors both report ok=false.
type ZScoreCache interface {
	Get(ctx context.Context, prices []float64, window int) (models.ZScores, bool)
	Put(ctx context.Context, prices []float64, window int, zs models.ZScores)
}

// DetectorRegistry resolves a method to its detector.
type DetectorRegistry interface {
	Get(method models.DetectionMethod) (Detector, error)
	Methods() []models.DetectionMethod
}
