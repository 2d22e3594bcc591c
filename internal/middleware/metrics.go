package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/suteetoe/krist-shop/prometheus"
)

// MetricsMiddleware adds prometheus metrics to track HTTP requests
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		// Errors are written here so the recorded status is the one the client sees
		if err := next(c); err != nil {
			c.Error(err)
		}

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		prometheus.RecordHTTPRequest(c.Request().Method, path, c.Response().Status, time.Since(start))
		return nil
	}
}
