package middleware

import (
	"time"

	applogger "PriceAnomaly/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				// Render now so the logged status is the one the client sees.
				c.Error(err)
			}

			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("path", req.URL.Path),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("latency_ms", time.Since(start)),
				applogger.String("remote_ip", c.RealIP()),
				applogger.String("request_id", RequestIDFrom(c)),
			}
			if err != nil {
				fields = append(fields, applogger.Error(err))
			}
			if c.Response().Status >= 500 {
				l.Error("http request", fields...)
			} else {
				l.Info("http request", fields...)
			}
			return nil
		}
	}
}
