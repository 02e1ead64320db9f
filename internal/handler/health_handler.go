package handler

import (
	"context"
	"time"

	"finlearn/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// Pinger is satisfied by *sqlx.DB and the cache adapter.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler reports dependency reachability.
type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, p := range h.checks {
		if err := p.PingContext(ctx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.APIResponse{
			Error:   "Dependency unavailable",
			Code:    "UNHEALTHY",
			Details: status,
		})
	}
	return ok(c, status)
}
