package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	detections   *prometheus.CounterVec
	anomalies    *prometheus.CounterVec
	seriesPoints *prometheus.HistogramVec
	detectTime   *prometheus.HistogramVec
	errorsTotal  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		detections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "priceanomaly_detections_total",
				Help: "Total number of completed detections",
			},
			[]string{"method"},
		),
		anomalies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "priceanomaly_anomalies_flagged_total",
				Help: "Total number of points flagged as anomalous",
			},
			[]string{"method"},
		),
		seriesPoints: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "priceanomaly_series_points",
				Help:    "Number of points per analysed series",
				Buckets: prometheus.ExponentialBuckets(2, 4, 8),
			},
			[]string{"method"},
		),
		detectTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "priceanomaly_detection_duration_seconds",
				Help:    "Duration of a single detection in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "priceanomaly_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "priceanomaly_cache_lookups_total",
				Help: "Z-score cache lookups by layer and result",
			},
			[]string{"layer", "result"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "priceanomaly_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordDetection records a completed detection.
func (r *Recorder) RecordDetection(method string, points, anomalies int, seconds float64) {
	r.detections.WithLabelValues(method).Inc()
	r.anomalies.WithLabelValues(method).Add(float64(anomalies))
	r.seriesPoints.WithLabelValues(method).Observe(float64(points))
	r.detectTime.WithLabelValues(method).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Recorder) RecordCacheLookup(layer string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(layer, result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
