package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-progress-api/internal/config"
	"github.com/noah-isme/gema-progress-api/internal/database"
	"github.com/noah-isme/gema-progress-api/internal/utils"
)

const healthProbeTimeout = 2 * time.Second

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	EventBus     string            `json:"event_bus"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthCheck reports service identity and probes each dependency. Any failing
// probe turns the response into a 503 with status "degraded".
func HealthCheck(cfg config.Config, checks ...database.Check) fiber.Handler {
	bus := "local"
	if cfg.UsesBroker() {
		bus = "broker"
	}

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			EventBus:    bus,
		}

		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthProbeTimeout)
			defer cancel()

			payload.Dependencies = make(map[string]string, len(checks))
			for _, check := range checks {
				if err := check.Ping(ctx); err != nil {
					payload.Dependencies[check.Name] = "down"
					payload.Status = "degraded"
					continue
				}
				payload.Dependencies[check.Name] = "up"
			}
		}

		if payload.Status != "ok" {
			return utils.SendFailure(c, fiber.StatusServiceUnavailable, "service degraded", payload)
		}
		return utils.SendSuccess(c, "service healthy", payload)
	}
}
