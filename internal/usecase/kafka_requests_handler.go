package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"PriceAnomaly/internal/domain/models"
	domrepo "PriceAnomaly/internal/domain/repository"
	xhttp "PriceAnomaly/pkg/http"
	pkgkafka "PriceAnomaly/pkg/kafka"
	applogger "PriceAnomaly/pkg/logger"

	"github.com/google/uuid"
)

// Kinds published in the "type" header.
const (
	KindResult = "result"
	KindError  = "error"
)

// AnomalyDetector is the engine surface the transports use.
type AnomalyDetector interface {
	Detect(ctx context.Context, req models.DetectionRequest) (*models.AnomalyResult, error)
}

// KafkaRequestsHandler answers detection requests read from Kafka. Every
// request produces exactly one result or error message under the same key.
type KafkaRequestsHandler struct {
	topic     string
	engine    AnomalyDetector
	publisher domrepo.ResultPublisher
	metrics   domrepo.Metrics
	logger    *applogger.Logger
}

func NewKafkaRequestsHandler(topic string, engine AnomalyDetector, publisher domrepo.ResultPublisher, metrics domrepo.Metrics, logger *applogger.Logger) *KafkaRequestsHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &KafkaRequestsHandler{topic: topic, engine: engine, publisher: publisher, metrics: metrics, logger: logger}
}

func (h *KafkaRequestsHandler) Topic() string { return h.topic }

// Handle returns an error only when the reply could not be published, so the
// consumer retries delivery rather than the detection.
func (h *KafkaRequestsHandler) Handle(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		key = []byte(uuid.NewString())
	}

	var req models.DetectRequest
	if err := json.Unmarshal(value, &req); err != nil {
		h.recordError("consumer_unmarshal")
		return h.publishError(ctx, key, xhttp.BadRequestErrorf("malformed request: %v", err))
	}
	if err := xhttp.ValidateRequest(ctx, &req); err != nil {
		h.recordError(xhttp.TypeInvalidInput)
		return h.publishError(ctx, key, err)
	}

	res, err := h.engine.Detect(ctx, req.ToDomain())
	if err != nil {
		return h.publishError(ctx, key, DetectionAppError(err))
	}
	return h.publisher.PublishResult(ctx, key, KindResult, models.NewDetectResponse(res))
}

func (h *KafkaRequestsHandler) publishError(ctx context.Context, key []byte, err error) error {
	appErr := xhttp.AsAppError(err)
	h.logger.Warn("kafka detection request failed",
		applogger.String("key", string(key)),
		applogger.String("type", appErr.Type),
		applogger.String("detail", appErr.Detail),
	)
	return h.publisher.PublishResult(ctx, key, KindError, models.ErrorResponse{
		Detail: appErr.Detail,
		Type:   appErr.Type,
		Path:   h.topic,
	})
}

func (h *KafkaRequestsHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

// DetectionAppError maps engine errors onto transport errors. Unexpected
// errors get a generic detail so internals are not leaked to callers.
func DetectionAppError(err error) *xhttp.AppError {
	var de *models.DetectionError
	switch {
	case errors.Is(err, models.ErrInvalidInput) && errors.As(err, &de):
		return xhttp.BadRequestError(de.Message).WithError(err)
	case errors.Is(err, models.ErrInvalidInput):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrInternalConsistency):
		return xhttp.NewAppError(xhttp.TypeInternalConsistency, err.Error(), http.StatusInternalServerError).WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}

var _ pkgkafka.MessageHandler = (*KafkaRequestsHandler)(nil)
