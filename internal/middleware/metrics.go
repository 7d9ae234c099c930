package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/anonto42/publishare/backend/internal/metrics"
	"github.com/labstack/echo/v4"
)

// HTTPMetrics records request counts and latency per route pattern.
func HTTPMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := strconv.Itoa(statusOf(c, err))
			method := c.Request().Method
			metrics.RequestsTotal.WithLabelValues(route, method, status).Inc()
			metrics.RequestLatency.WithLabelValues(route, method, status).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// statusOf predicts the status the error handler will write for err.
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	if e, ok := apperr.As(err); ok {
		return e.Status()
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
