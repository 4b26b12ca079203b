package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordDetection("zscore", 8, 1, 0.001)
	r.RecordDetection("zscore", 30, 2, 0.002)
	r.RecordError("invalid_input")
	r.RecordCacheLookup("memory", true)
	r.RecordCacheLookup("memory", false)
	r.RecordCacheLookup("memory", false)

	if got := testutil.ToFloat64(r.detections.WithLabelValues("zscore")); got != 2 {
		t.Fatalf("detections = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.anomalies.WithLabelValues("zscore")); got != 3 {
		t.Fatalf("anomalies = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.errorsTotal.WithLabelValues("invalid_input")); got != 1 {
		t.Fatalf("errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("memory", "miss")); got != 2 {
		t.Fatalf("cache misses = %v, want 2", got)
	}
}

func TestRecordersOnSeparateRegistries(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
