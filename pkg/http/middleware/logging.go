package middleware

import (
	"time"

	applogger "EquityLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one structured line per request. Probe endpoints are
// skipped to keep the log readable under scraping.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	skip := map[string]bool{
		"/health":  true,
		"/metrics": true,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			if l == nil || skip[req.URL.Path] {
				return err
			}

			l.Info("http request",
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("duration_ms", time.Since(start)),
			)
			return err
		}
	}
}
