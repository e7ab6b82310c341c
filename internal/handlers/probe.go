package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"ukbol/internal/jobs"
)

// Pinger is satisfied by the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UpstreamStatus is satisfied by the upstream availability checker.
type UpstreamStatus interface {
	Ready() bool
	Statuses() []jobs.ServiceStatus
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	db       Pinger
	upstream UpstreamStatus
}

// NewProbeHandler creates a new probe handler. Either dependency may be nil
// when the corresponding feature is disabled.
func NewProbeHandler(database Pinger, upstream UpstreamStatus) *ProbeHandler {
	return &ProbeHandler{db: database, upstream: upstream}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK if the database (when configured) is reachable and every
// required upstream passed its last check.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if h.db != nil {
		if err := h.db.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "error",
				"error":  "database unavailable",
			})
		}
	}

	if h.upstream != nil && !h.upstream.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "error",
			"error":     "upstream unavailable",
			"upstreams": h.upstream.Statuses(),
		})
	}

	resp := fiber.Map{"status": "ok"}
	if h.upstream != nil {
		resp["upstreams"] = h.upstream.Statuses()
	}
	return c.JSON(resp)
}
