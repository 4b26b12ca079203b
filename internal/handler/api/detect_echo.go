package api

import (
	"context"
	"net/http"
	"time"

	"PriceAnomaly/internal/domain/models"
	"PriceAnomaly/internal/service/metrics"
	"PriceAnomaly/internal/usecase"
	xhttp "PriceAnomaly/pkg/http"
	applogger "PriceAnomaly/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DetectionEngine is what the HTTP layer needs from the engine.
type DetectionEngine interface {
	Detect(ctx context.Context, req models.DetectionRequest) (*models.AnomalyResult, error)
	Methods() []models.DetectionMethod
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string   `json:"status"`
	Methods   []string `json:"methods"`
	CacheSize int      `json:"cache_size"`
}

// DetectEchoHandler serves the detection API.
type DetectEchoHandler struct {
	engine    DetectionEngine
	logger    *applogger.Logger
	limit     echo.MiddlewareFunc
	cacheSize func() int
}

// HandlerOption configures DetectEchoHandler.
type HandlerOption func(*DetectEchoHandler)

// WithRateLimit guards POST /detect-anomalies with mw.
func WithRateLimit(mw echo.MiddlewareFunc) HandlerOption {
	return func(h *DetectEchoHandler) { h.limit = mw }
}

// WithCacheSize reports the z-score cache population on /health.
func WithCacheSize(fn func() int) HandlerOption {
	return func(h *DetectEchoHandler) { h.cacheSize = fn }
}

func NewDetectEchoHandler(engine DetectionEngine, logger *applogger.Logger, opts ...HandlerOption) *DetectEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = applogger.Nop()
	}
	h := &DetectEchoHandler{engine: engine, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *DetectEchoHandler) RegisterRoutes(e *echo.Echo) {
	var mw []echo.MiddlewareFunc
	if h.limit != nil {
		mw = append(mw, h.limit)
	}
	e.POST("/detect-anomalies", h.DetectAnomalies, mw...)
	e.GET("/methods", h.Methods)
	e.GET("/health", h.Health)
}

func (h *DetectEchoHandler) DetectAnomalies(c echo.Context) error {
	const endpoint = "detect_anomalies"
	start := time.Now()
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.DetectRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return h.fail(c, endpoint, err)
	}

	res, err := h.engine.Detect(c.Request().Context(), req.ToDomain())
	if err != nil {
		return h.fail(c, endpoint, usecase.DetectionAppError(err))
	}
	return xhttp.SuccessResponse(c, models.NewDetectResponse(res))
}

func (h *DetectEchoHandler) Methods(c echo.Context) error {
	methods := h.engine.Methods()
	out := make([]models.MethodInfo, 0, len(methods))
	for _, m := range methods {
		out = append(out, models.MethodInfo{Method: string(m), Reference: models.ReferenceSemantics[m]})
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.SuccessResponse(c, out)
}

func (h *DetectEchoHandler) Health(c echo.Context) error {
	resp := HealthResponse{Status: "ok", CacheSize: -1}
	for _, m := range h.engine.Methods() {
		resp.Methods = append(resp.Methods, string(m))
	}
	if h.cacheSize != nil {
		resp.CacheSize = h.cacheSize()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *DetectEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := xhttp.AsAppError(err)
	metrics.EndpointErrors.WithLabelValues(endpoint, appErr.Type).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("detect request failed",
			applogger.String("type", appErr.Type),
			applogger.Error(appErr.Unwrap()),
		)
	}
	return xhttp.ErrorResponse(c, appErr)
}
