package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jewelify/jewelify-server/internal/middleware"
	"github.com/jewelify/jewelify-server/internal/models"
	"github.com/jewelify/jewelify-server/internal/services"
	"github.com/jewelify/jewelify-server/internal/storage"
)

// PredictionHandler handles compatibility predictions
type PredictionHandler struct {
	store     storage.Store
	predictor *services.Predictor
}

// NewPredictionHandler creates a new prediction handler. predictor may be
// nil when the model artifacts failed to load; requests then report a
// server error.
func NewPredictionHandler(store storage.Store, predictor *services.Predictor) *PredictionHandler {
	return &PredictionHandler{
		store:     store,
		predictor: predictor,
	}
}

// Predict scores an uploaded face/jewelry image pair and stores the result
func (h *PredictionHandler) Predict(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	if h.predictor == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Model is not loaded properly",
		})
	}

	faceHeader, err := c.FormFile("face")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Face image is required",
		})
	}
	jewelryHeader, err := c.FormFile("jewelry")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Jewelry image is required",
		})
	}

	faceType := headerContentType(faceHeader)
	jewelryType := headerContentType(jewelryHeader)
	if !strings.HasPrefix(faceType, "image/") || !strings.HasPrefix(jewelryType, "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Uploaded files must be images",
		})
	}

	faceData, err := readUpload(faceHeader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to read uploaded images: %v", err),
		})
	}
	jewelryData, err := readUpload(jewelryHeader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to read uploaded images: %v", err),
		})
	}

	result, err := h.predictor.Predict(faceData, jewelryData, faceType, jewelryType)
	if err != nil {
		log.Printf("❌ Prediction failed for user %s: %v", user.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Prediction error: %v", err),
		})
	}

	prediction := &models.Prediction{
		UserID:           user.UserID,
		Score:            result.Score,
		Category:         result.Category,
		FaceImagePath:    faceHeader.Filename,
		JewelryImagePath: jewelryHeader.Filename,
	}
	if err := prediction.SetRecommendations(result.Recommendations); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to save prediction: %v", err),
		})
	}

	prediction, err = h.store.CreatePrediction(prediction)
	if err != nil {
		log.Printf("❌ Failed to save prediction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to save prediction: %v", err),
		})
	}

	return c.JSON(fiber.Map{
		"prediction_id":   prediction.PredictionID,
		"score":           result.Score,
		"category":        result.Category,
		"recommendations": result.Recommendations,
	})
}

// GetPrediction fetches one prediction owned by the caller
func (h *PredictionHandler) GetPrediction(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	predictionID := c.Params("id")

	prediction, err := h.store.GetPrediction(predictionID, user.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Prediction not found",
			})
		}
		log.Printf("❌ Error retrieving prediction %s: %v", predictionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Database error: %v", err),
		})
	}

	out, err := prediction.ToOutput(h.lookupImageURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Database error: %v", err),
		})
	}
	return c.JSON(out)
}

func (h *PredictionHandler) lookupImageURL(name string) (string, bool) {
	image, err := h.store.GetJewelryImage(name)
	if err != nil {
		return "", false
	}
	return image.URL, true
}

func headerContentType(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
