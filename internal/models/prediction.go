package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prediction stores the outcome of one compatibility check between a face
// image and a jewelry image
type Prediction struct {
	gorm.Model
	PredictionID     string  `json:"prediction_id" gorm:"uniqueIndex"`
	UserID           string  `json:"user_id" gorm:"index"`
	Score            float64 `json:"score"`
	Category         string  `json:"category"`
	Recommendations  string  `json:"-"` // JSON array of jewelry names
	FaceImagePath    string  `json:"face_image_path"`
	JewelryImagePath string  `json:"jewelry_image_path"`
}

// BeforeCreate hook to auto-generate PredictionID
func (p *Prediction) BeforeCreate(tx *gorm.DB) error {
	if p.PredictionID == "" {
		p.PredictionID = uuid.New().String()
	}
	return nil
}

// SetRecommendations encodes the recommended jewelry names for storage
func (p *Prediction) SetRecommendations(names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}
	p.Recommendations = string(data)
	return nil
}

// RecommendationNames decodes the stored jewelry names
func (p *Prediction) RecommendationNames() ([]string, error) {
	if p.Recommendations == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(p.Recommendations), &names); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	return names, nil
}

// JewelryImage maps a catalog jewelry name to its hosted image URL
type JewelryImage struct {
	gorm.Model
	Name string `json:"name" gorm:"uniqueIndex;not null"`
	URL  string `json:"url"`
}

// RecommendationOut is a recommendation decorated with its catalog image
// URL; URL is empty when the catalog has no entry for the name
type RecommendationOut struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// PredictionOut is the API shape of a stored prediction
type PredictionOut struct {
	ID              string              `json:"id"`
	Score           float64             `json:"score"`
	Category        string              `json:"category"`
	Recommendations []RecommendationOut `json:"recommendations"`
	Timestamp       string              `json:"timestamp"`
}

// ToOutput resolves the stored prediction into its API shape, looking up
// image URLs through the supplied catalog resolver
func (p *Prediction) ToOutput(lookup func(name string) (string, bool)) (*PredictionOut, error) {
	names, err := p.RecommendationNames()
	if err != nil {
		return nil, err
	}

	recommendations := make([]RecommendationOut, 0, len(names))
	for _, name := range names {
		out := RecommendationOut{Name: name}
		if url, ok := lookup(name); ok {
			out.URL = url
		}
		recommendations = append(recommendations, out)
	}

	return &PredictionOut{
		ID:              p.PredictionID,
		Score:           p.Score,
		Category:        p.Category,
		Recommendations: recommendations,
		Timestamp:       p.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}
