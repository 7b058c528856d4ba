package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sort"

	"github.com/jewelify/jewelify-server/internal/config"
)

// Compatibility categories ordered from best to worst
const (
	CategoryVeryGood = "Very Good"
	CategoryGood     = "Good"
	CategoryNeutral  = "Neutral"
	CategoryBad      = "Bad"
	CategoryVeryBad  = "Very Bad"
)

const maxRecommendations = 10

// scalerArtifact holds the standard-scaler parameters fitted at training
// time: transform is (x - mean) / scale
type scalerArtifact struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// denseLayer is one fully connected layer of the Q-network. Weights is
// row-major: one row of input weights per output unit.
type denseLayer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"` // "relu" or "linear"
}

type modelArtifact struct {
	Layers []denseLayer `json:"layers"`
}

// PredictionResult is the outcome of one compatibility check
type PredictionResult struct {
	Score           float64
	Category        string
	Recommendations []string
}

// Predictor scores face/jewelry compatibility against the trained model
// artifacts. All state is read-only after New, so a single instance is safe
// for concurrent request handling.
type Predictor struct {
	scaler          scalerArtifact
	model           modelArtifact
	featureSize     int
	jewelryNames    []string
	jewelryFeatures [][]float64
	extractor       FeatureExtractor
}

// NewPredictor loads the model, scaler and pairwise-features artifacts.
// All three files must exist; a broken artifact fails startup rather than
// surfacing per-request.
func NewPredictor(cfg *config.PredictorConfig, extractor FeatureExtractor) (*Predictor, error) {
	for _, path := range []string{cfg.ModelPath, cfg.ScalerPath, cfg.PairwiseFeaturesPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("missing required file: %s", path)
		}
	}

	p := &Predictor{extractor: extractor}

	log.Println("📏 Loading scaler...")
	if err := loadJSON(cfg.ScalerPath, &p.scaler); err != nil {
		return nil, fmt.Errorf("failed to load scaler: %w", err)
	}
	if len(p.scaler.Mean) == 0 || len(p.scaler.Mean) != len(p.scaler.Scale) {
		return nil, fmt.Errorf("scaler mean/scale length mismatch: %d vs %d", len(p.scaler.Mean), len(p.scaler.Scale))
	}
	p.featureSize = len(p.scaler.Mean)

	log.Println("🚀 Loading model...")
	if err := loadJSON(cfg.ModelPath, &p.model); err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	if len(p.model.Layers) == 0 {
		return nil, fmt.Errorf("model has no layers")
	}
	if err := p.validateModel(); err != nil {
		return nil, err
	}

	log.Println("📂 Loading pairwise features...")
	var pairwise map[string][]float64
	if err := loadJSON(cfg.PairwiseFeaturesPath, &pairwise); err != nil {
		return nil, fmt.Errorf("failed to load pairwise features: %w", err)
	}

	// Catalog order is the sorted name order; the Q-network output layer
	// must be serialized in the same order.
	names := make([]string, 0, len(pairwise))
	for name, features := range pairwise {
		if len(features) != p.featureSize {
			log.Printf("⚠️  Skipping %q: feature size %d, want %d", name, len(features), p.featureSize)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	p.jewelryNames = names
	p.jewelryFeatures = make([][]float64, len(names))
	for i, name := range names {
		p.jewelryFeatures[i] = p.scale(pairwise[name])
	}

	log.Printf("✅ Predictor initialized with %d catalog items", len(names))
	return p, nil
}

func (p *Predictor) validateModel() error {
	inputSize := p.featureSize
	for i, layer := range p.model.Layers {
		if len(layer.Weights) == 0 || len(layer.Weights) != len(layer.Biases) {
			return fmt.Errorf("model layer %d: weight/bias shape mismatch", i)
		}
		for _, row := range layer.Weights {
			if len(row) != inputSize {
				return fmt.Errorf("model layer %d: expected input size %d, got %d", i, inputSize, len(row))
			}
		}
		switch layer.Activation {
		case "relu", "linear", "":
		default:
			return fmt.Errorf("model layer %d: unsupported activation %q", i, layer.Activation)
		}
		inputSize = len(layer.Weights)
	}
	return nil
}

// CatalogSize returns the number of jewelry items the predictor knows about
func (p *Predictor) CatalogSize() int {
	return len(p.jewelryNames)
}

// Predict scores the compatibility of a face image against a jewelry image
// and ranks catalog recommendations for the face.
func (p *Predictor) Predict(faceImage, jewelryImage []byte, faceType, jewelryType string) (*PredictionResult, error) {
	faceFeatures, err := p.extractor.ExtractFeatures(faceImage, faceType)
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}
	jewelFeatures, err := p.extractor.ExtractFeatures(jewelryImage, jewelryType)
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}

	if len(faceFeatures) != p.featureSize || len(jewelFeatures) != p.featureSize {
		return nil, fmt.Errorf("expected %d-dimensional features, got %d and %d",
			p.featureSize, len(faceFeatures), len(jewelFeatures))
	}

	faceScaled := p.scale(faceFeatures)
	jewelScaled := p.scale(jewelFeatures)

	// Cosine similarity in [-1,1] rescaled to [0,1]
	score := (cosineSimilarity(faceScaled, jewelScaled) + 1) / 2.0

	result := &PredictionResult{
		Score:           score,
		Category:        categorize(score),
		Recommendations: p.recommend(faceScaled),
	}
	return result, nil
}

// recommend runs the Q-network on the face features and returns the
// top-ranked catalog names. A catalog/output size mismatch yields no
// recommendations; the score and category still stand.
func (p *Predictor) recommend(faceScaled []float64) []string {
	qValues := p.forward(faceScaled)
	if len(qValues) != len(p.jewelryNames) {
		log.Printf("❌ Q-values length %d does not match catalog size %d", len(qValues), len(p.jewelryNames))
		return []string{}
	}

	indices := make([]int, len(qValues))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return qValues[indices[a]] > qValues[indices[b]]
	})

	count := maxRecommendations
	if count > len(indices) {
		count = len(indices)
	}
	names := make([]string, 0, count)
	for _, idx := range indices[:count] {
		names = append(names, p.jewelryNames[idx])
	}
	return names
}

// forward runs the dense network on the input vector
func (p *Predictor) forward(input []float64) []float64 {
	current := input
	for _, layer := range p.model.Layers {
		next := make([]float64, len(layer.Weights))
		for i, row := range layer.Weights {
			sum := layer.Biases[i]
			for j, w := range row {
				sum += w * current[j]
			}
			if layer.Activation == "relu" && sum < 0 {
				sum = 0
			}
			next[i] = sum
		}
		current = next
	}
	return current
}

// scale applies the standard-scaler transform
func (p *Predictor) scale(features []float64) []float64 {
	scaled := make([]float64, len(features))
	for i, v := range features {
		scaled[i] = (v - p.scaler.Mean[i]) / p.scaler.Scale[i]
	}
	return scaled
}

func categorize(score float64) string {
	switch {
	case score >= 0.8:
		return CategoryVeryGood
	case score >= 0.6:
		return CategoryGood
	case score >= 0.4:
		return CategoryNeutral
	case score >= 0.2:
		return CategoryBad
	default:
		return CategoryVeryBad
	}
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
