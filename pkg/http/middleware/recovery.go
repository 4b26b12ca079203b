package middleware

import (
	"fmt"
	"runtime/debug"

	applogger "PriceAnomaly/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns a panic into an error for the server's error handler.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					l.Error("panic recovered",
						applogger.String("path", c.Request().URL.Path),
						applogger.String("request_id", RequestIDFrom(c)),
						applogger.Error(perr),
						applogger.String("stack", string(debug.Stack())),
					)
					err = fmt.Errorf("panic: %w", perr)
				}
			}()
			return next(c)
		}
	}
}
