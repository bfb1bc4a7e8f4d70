package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	store     Pinger
	storeName string
}

// NewHealthHandler creates a new HealthHandler for the named store.
func NewHealthHandler(store Pinger, storeName string) *HealthHandler {
	return &HealthHandler{store: store, storeName: storeName}
}

// HandleHealth responds 200 when the store answers a ping and 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status, storeState, code := "healthy", "connected", fiber.StatusOK
	if err := h.store.Ping(c.UserContext()); err != nil {
		status, storeState, code = "unhealthy", "unreachable", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
		"store":  fiber.Map{"type": h.storeName, "state": storeState},
	})
}
