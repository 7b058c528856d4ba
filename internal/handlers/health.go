package handlers

import "github.com/gofiber/fiber/v2"

// HealthHandler handles health check requests
type HealthHandler struct {
	Version         string
	DatabaseCheck   func() error
	TwilioReady     bool
	PredictorReady  bool
	EmbeddingReady  bool
	KeepAliveActive bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{Version: version}
}

// Check returns the health status of the service; 503 when a critical
// dependency is down
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "healthy"
	statusCode := fiber.StatusOK

	databaseHealthy := true
	if h.DatabaseCheck != nil {
		if err := h.DatabaseCheck(); err != nil {
			databaseHealthy = false
			status = "unhealthy"
			statusCode = fiber.StatusServiceUnavailable
		}
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"version": h.Version,
		"services": fiber.Map{
			"database":   databaseHealthy,
			"twilio":     h.TwilioReady,
			"predictor":  h.PredictorReady,
			"embedding":  h.EmbeddingReady,
			"keep_alive": h.KeepAliveActive,
		},
	})
}
