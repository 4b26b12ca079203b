package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PriceAnomaly/internal/domain/models"
	domrepo "PriceAnomaly/internal/domain/repository"
	domsvc "PriceAnomaly/internal/domain/service"
	applogger "PriceAnomaly/pkg/logger"
)

// AnomalyEngine runs validation, detector dispatch and result assembly.
type AnomalyEngine struct {
	registry      domsvc.DetectorRegistry
	metrics       domrepo.Metrics
	logger        *applogger.Logger
	defaultMethod models.DetectionMethod
	defaultWindow int
}

// EngineOption configures AnomalyEngine.
type EngineOption func(*AnomalyEngine)

// WithDefaults sets the method and window used when a request omits them.
func WithDefaults(method models.DetectionMethod, window int) EngineOption {
	return func(e *AnomalyEngine) {
		if method.Valid() {
			e.defaultMethod = method
		}
		if window > 1 {
			e.defaultWindow = window
		}
	}
}

func NewAnomalyEngine(registry domsvc.DetectorRegistry, metrics domrepo.Metrics, logger *applogger.Logger, opts ...EngineOption) *AnomalyEngine {
	if logger == nil {
		logger = applogger.Nop()
	}
	e := &AnomalyEngine{
		registry:      registry,
		metrics:       metrics,
		logger:        logger,
		defaultMethod: models.DefaultMethod,
		defaultWindow: models.DefaultWindowSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect validates req, runs the selected detector and assembles the result.
// Errors wrap models.ErrInvalidInput or models.ErrInternalConsistency; any
// other error, including a recovered detector panic, is unexpected.
func (e *AnomalyEngine) Detect(ctx context.Context, req models.DetectionRequest) (res *models.AnomalyResult, err error) {
	start := time.Now()
	if req.Method == "" {
		req.Method = e.defaultMethod
	}
	if req.WindowSize == 0 {
		req.WindowSize = e.defaultWindow
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("detector %s panicked: %v", req.Method, r)
		}
		e.observe(req, res, err, time.Since(start))
	}()

	method, err := models.ParseDetectionMethod(string(req.Method))
	if err != nil {
		return nil, err
	}
	detector, err := e.registry.Get(method)
	if err != nil {
		return nil, err
	}
	series, window, err := ValidateSeries(req.Series, req.WindowSize)
	if err != nil {
		return nil, err
	}
	if window != req.WindowSize {
		e.logger.Debug("window clamped",
			applogger.Int("requested", req.WindowSize),
			applogger.Int("effective", window),
			applogger.Int("points", len(series)),
		)
	}

	det := detector.Detect(ctx, series, window)
	return AssembleResult(series, method, det)
}

// Methods lists the methods the engine can run.
func (e *AnomalyEngine) Methods() []models.DetectionMethod {
	return e.registry.Methods()
}

func (e *AnomalyEngine) observe(req models.DetectionRequest, res *models.AnomalyResult, err error, took time.Duration) {
	if err != nil {
		kind := models.ErrorKind(err)
		if e.metrics != nil {
			e.metrics.RecordError(kind)
		}
		fields := []applogger.Field{
			applogger.String("request", req.String()),
			applogger.String("kind", kind),
			applogger.Error(err),
		}
		if errors.Is(err, models.ErrInvalidInput) {
			e.logger.Warn("detection rejected", fields...)
		} else {
			e.logger.Error("detection failed", fields...)
		}
		return
	}

	anomalies := res.AnomalyCount()
	if e.metrics != nil {
		e.metrics.RecordDetection(string(res.Method), len(res.Prices), anomalies, took.Seconds())
	}
	e.logger.Debug("detection completed",
		applogger.String("method", string(res.Method)),
		applogger.Int("points", len(res.Prices)),
		applogger.Int("anomalies", anomalies),
		applogger.Duration("took_ms", took),
	)
}
