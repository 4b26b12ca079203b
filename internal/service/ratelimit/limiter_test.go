package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestAllowBurstThenDeny(t *testing.T) {
	l := New(1, 2)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst of 2 should be allowed")
	}
	if l.Allow("a") {
		t.Fatalf("third request in the same instant should be denied")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must not share a bucket")
	}

	fixed = fixed.Add(time.Second)
	if !l.Allow("a") {
		t.Fatalf("token should refill after one second")
	}
}

func TestDisabledLimiter(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		if !l.Allow("x") {
			t.Fatalf("disabled limiter denied request %d", i)
		}
	}
}

func TestPruneIdleKeys(t *testing.T) {
	l := New(5, 1)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	l.Allow("old")

	fixed = fixed.Add(time.Hour)
	l.Allow("new")
	if l.Len() != 1 {
		t.Fatalf("expected idle key to be pruned, have %d keys", l.Len())
	}
}

func TestMiddlewareReturns429(t *testing.T) {
	l := New(1, 1)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, l.Middleware())

	codes := make([]int, 2)
	for i := range codes {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}
