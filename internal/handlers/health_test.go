package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthCheck(t *testing.T, handler *HealthHandler) (int, map[string]interface{}) {
	t.Helper()

	app := fiber.New()
	app.Get("/health", handler.Check)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestHealthCheckReportsServices(t *testing.T) {
	handler := NewHealthHandler("1.0.0")
	handler.TwilioReady = true
	handler.PredictorReady = true
	handler.KeepAliveActive = true

	code, payload := healthCheck(t, handler)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, "1.0.0", payload["version"])

	services := payload["services"].(map[string]interface{})
	assert.Equal(t, true, services["database"])
	assert.Equal(t, true, services["twilio"])
	assert.Equal(t, true, services["predictor"])
	assert.Equal(t, true, services["keep_alive"])
	// Predictor loads without a configured embedding sidecar, so the
	// payload must call out that predictions cannot succeed yet
	assert.Equal(t, false, services["embedding"])
}

func TestHealthCheckEmbeddingConfigured(t *testing.T) {
	handler := NewHealthHandler("1.0.0")
	handler.PredictorReady = true
	handler.EmbeddingReady = true

	_, payload := healthCheck(t, handler)
	services := payload["services"].(map[string]interface{})
	assert.Equal(t, true, services["embedding"])
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	handler := NewHealthHandler("1.0.0")
	handler.DatabaseCheck = func() error { return errors.New("connection refused") }

	code, payload := healthCheck(t, handler)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", payload["status"])

	services := payload["services"].(map[string]interface{})
	assert.Equal(t, false, services["database"])
}
