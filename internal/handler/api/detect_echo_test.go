package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"PriceAnomaly/internal/domain/models"
	"PriceAnomaly/internal/service/ratelimit"
	"PriceAnomaly/internal/services/analytics"
	"PriceAnomaly/internal/usecase"
	xhttp "PriceAnomaly/pkg/http"
	applogger "PriceAnomaly/pkg/logger"

	"github.com/labstack/echo/v4"
)

const spikeBody = `{"prices":[
	{"timestamp":"2024-03-01T09:30:00Z","price":100},
	{"timestamp":"2024-03-01T09:31:00Z","price":101},
	{"timestamp":"2024-03-01T09:32:00Z","price":100},
	{"timestamp":"2024-03-01T09:33:00Z","price":102},
	{"timestamp":"2024-03-01T09:34:00Z","price":150},
	{"timestamp":"2024-03-01T09:35:00Z","price":101},
	{"timestamp":"2024-03-01T09:36:00Z","price":100},
	{"timestamp":"2024-03-01T09:37:00Z","price":99}
],"method":"zscore","window_size":4}`

func newTestServer(opts ...HandlerOption) *xhttp.Server {
	engine := usecase.NewAnomalyEngine(analytics.NewDefaultRegistry(nil), nil, nil)
	h := NewDetectEchoHandler(engine, applogger.Nop(), opts...)
	return xhttp.NewServer(h, applogger.Nop(), xhttp.WithMetrics("", nil))
}

func do(s *xhttp.Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestDetectAnomaliesSpike(t *testing.T) {
	rec := do(newTestServer(), http.MethodPost, "/detect-anomalies", spikeBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp models.DetectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Method != "zscore" || len(resp.Prices) != 8 || len(resp.ThresholdValues) != 8 || len(resp.Timestamps) != 8 {
		t.Fatalf("unexpected response %+v", resp)
	}
	for i, f := range resp.IsAnomaly {
		if f != (i == 4) {
			t.Fatalf("is_anomaly = %v, want only index 4", resp.IsAnomaly)
		}
	}
	if resp.Stats["window_size"] != 4 {
		t.Fatalf("stats = %v", resp.Stats)
	}
}

func TestDetectAnomaliesDefaultsMethod(t *testing.T) {
	body := strings.Replace(spikeBody, `"method":"zscore",`, "", 1)
	rec := do(newTestServer(), http.MethodPost, "/detect-anomalies", body)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"method":"zscore"`) {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestDetectAnomaliesInvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		detail string
	}{
		{"out of order", `{"prices":[{"timestamp":"2024-03-01T09:31:00Z","price":1},{"timestamp":"2024-03-01T09:30:00Z","price":2}]}`, "out of order"},
		{"insufficient", `{"prices":[{"timestamp":"2024-03-01T09:30:00Z","price":1}]}`, "insufficient points"},
		{"non-positive", `{"prices":[{"timestamp":"2024-03-01T09:30:00Z","price":1},{"timestamp":"2024-03-01T09:31:00Z","price":0}]}`, "non-positive price"},
		{"unknown method", `{"prices":[{"timestamp":"2024-03-01T09:30:00Z","price":1},{"timestamp":"2024-03-01T09:31:00Z","price":2}],"method":"median"}`, "method"},
		{"window one", `{"prices":[{"timestamp":"2024-03-01T09:30:00Z","price":1},{"timestamp":"2024-03-01T09:31:00Z","price":2}],"window_size":1}`, "window_size"},
		{"malformed", `{"prices":[`, ""},
	}
	s := newTestServer()
	for _, c := range cases {
		rec := do(s, http.MethodPost, "/detect-anomalies", c.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d body=%s", c.name, rec.Code, rec.Body.String())
		}
		body := decodeError(t, rec)
		if body.Type != "invalid_input" || body.Path != "/detect-anomalies" || !strings.Contains(body.Detail, c.detail) {
			t.Fatalf("%s: body = %+v", c.name, body)
		}
	}
}

func TestDetectAnomaliesRateLimited(t *testing.T) {
	s := newTestServer(WithRateLimit(ratelimit.New(0.001, 1).Middleware()))
	if rec := do(s, http.MethodPost, "/detect-anomalies", spikeBody); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := do(s, http.MethodPost, "/detect-anomalies", spikeBody)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Type != "rate_limited" {
		t.Fatalf("body = %+v", body)
	}
	if rec := do(s, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health must not be rate limited, status = %d", rec.Code)
	}
}

func TestMethods(t *testing.T) {
	rec := do(newTestServer(), http.MethodGet, "/methods", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out []models.MethodInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("methods = %+v", out)
	}
	for _, m := range out {
		if m.Reference == "" {
			t.Fatalf("method %s has no reference description", m.Method)
		}
	}
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(WithCacheSize(func() int { return 7 })), http.MethodGet, "/health", "")
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.CacheSize != 7 || len(resp.Methods) != 3 {
		t.Fatalf("health = %+v", resp)
	}
}
