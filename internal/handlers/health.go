package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// HealthCheck pings every named dependency and answers 503 if any fails.
func HealthCheck(checks map[string]Check) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := "ok"
		services := fiber.Map{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				services[name] = "unavailable"
				status = "degraded"
				continue
			}
			services[name] = "connected"
		}

		code := fiber.StatusOK
		if status != "ok" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"services": services,
		})
	}
}
