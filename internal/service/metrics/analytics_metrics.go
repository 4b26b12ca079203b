package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "priceanomaly",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of detection endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "priceanomaly",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by detection endpoint and error type",
		},
		[]string{"endpoint", "type"},
	)
)

// Register adds the endpoint collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors)
	})
}
