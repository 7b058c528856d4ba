package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/jewelify/jewelify-server/internal/middleware"
	"github.com/jewelify/jewelify-server/internal/models"
	"github.com/jewelify/jewelify-server/internal/storage"
)

// HistoryHandler serves the caller's prediction history
type HistoryHandler struct {
	store storage.Store
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(store storage.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// GetHistory lists the caller's predictions newest-first
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	predictions, err := h.store.GetPredictionsByUser(user.UserID)
	if err != nil {
		log.Printf("❌ Error retrieving history for %s: %v", user.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Database error: %v", err),
		})
	}

	if len(predictions) == 0 {
		return c.JSON(fiber.Map{
			"message":         "No predictions found",
			"recommendations": []models.PredictionOut{},
		})
	}

	results := make([]*models.PredictionOut, 0, len(predictions))
	for _, prediction := range predictions {
		out, err := prediction.ToOutput(h.lookupImageURL)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("Database error: %v", err),
			})
		}
		results = append(results, out)
	}

	return c.JSON(results)
}

func (h *HistoryHandler) lookupImageURL(name string) (string, bool) {
	image, err := h.store.GetJewelryImage(name)
	if err != nil {
		return "", false
	}
	return image.URL, true
}
