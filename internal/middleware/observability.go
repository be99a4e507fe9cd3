package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/observability"
)

// Observability records Prometheus metrics and one access log line for every
// request under /api. Routes are labelled by their template so per-course and
// per-week paths share a series.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if !strings.HasPrefix(c.Path(), "/api/") {
			return err
		}
		elapsed := time.Since(start)

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		status := c.Response().StatusCode()
		labels := []string{c.Method(), route, strconv.Itoa(status)}

		observability.HTTPRequests().WithLabelValues(labels...).Inc()
		observability.HTTPLatency().WithLabelValues(labels[0], route).Observe(elapsed.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.HTTPErrors().WithLabelValues(labels...).Inc()
		}

		entry := ContextLogger(c.UserContext(), logger).With().
			Str("method", labels[0]).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed)
		if userID, ok := c.Locals("user_id").(uint); ok {
			entry = entry.Uint("user_id", userID)
		}
		accessLog := entry.Logger()

		event := accessLog.Info()
		if status >= fiber.StatusInternalServerError {
			event = accessLog.Error()
		} else if status >= fiber.StatusBadRequest {
			event = accessLog.Warn()
		}
		event.Msg("request handled")

		return err
	}
}
