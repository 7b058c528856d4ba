package services

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// FeatureExtractor turns raw image bytes into a feature vector
type FeatureExtractor interface {
	ExtractFeatures(image []byte, contentType string) ([]float64, error)
}

// EmbeddingClient calls the MobileNetV2 embedding sidecar over HTTP. The
// sidecar owns the convolutional feature extraction; this service only
// consumes the resulting vectors.
type EmbeddingClient struct {
	client *resty.Client
}

// NewEmbeddingClient creates a client for the embedding service at baseURL
func NewEmbeddingClient(baseURL string) *EmbeddingClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second)

	return &EmbeddingClient{client: client}
}

type embeddingResponse struct {
	Features []float64 `json:"features"`
	Error    string    `json:"error"`
}

// ExtractFeatures posts the image to the embedding service and returns the
// feature vector
func (e *EmbeddingClient) ExtractFeatures(image []byte, contentType string) ([]float64, error) {
	var result embeddingResponse
	var apiErr embeddingResponse

	// Force JSON decoding so a sidecar that omits the response
	// Content-Type header still unmarshals
	resp, err := e.client.R().
		SetHeader("Content-Type", contentType).
		SetHeader("Accept", "application/json").
		SetBody(image).
		SetResult(&result).
		SetError(&apiErr).
		ForceContentType("application/json").
		Post("/embed")
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if resp.IsError() {
		if apiErr.Error != "" {
			return nil, fmt.Errorf("embedding service error: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode())
	}

	if len(result.Features) == 0 {
		return nil, fmt.Errorf("embedding service returned no features")
	}
	return result.Features, nil
}
