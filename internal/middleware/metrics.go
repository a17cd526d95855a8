package middleware

import (
	"strconv"
	"time"

	"sales-dashboard/prometheus"

	"github.com/labstack/echo/v4"
)

// Metrics records request count and latency per route
func Metrics(m *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// let echo write the error so the recorded status is the final one
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)
			m.ObserveHTTPRequest(c.Request().Method, path, status, time.Since(start))

			return nil
		}
	}
}
