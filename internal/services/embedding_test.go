package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingClientExtractFeatures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"features": []float64{0.1, 0.2, 0.3},
		})
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL)
	features, err := client.ExtractFeatures([]byte("image-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, features)
}

func TestEmbeddingClientMissingContentType(t *testing.T) {
	// Sidecar that never sets a response Content-Type header -
	// the body must still decode as JSON.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features": [0.5, 0.6]}`))
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL)
	features, err := client.ExtractFeatures([]byte("image-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.6}, features)
}

func TestEmbeddingClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "not an image"})
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL)
	_, err := client.ExtractFeatures([]byte("junk"), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an image")
}

func TestEmbeddingClientErrorWithoutContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "unsupported format"}`))
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL)
	_, err := client.ExtractFeatures([]byte("junk"), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestEmbeddingClientEmptyFeatures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"features": []float64{}})
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL)
	_, err := client.ExtractFeatures([]byte("image-bytes"), "image/jpeg")
	assert.Error(t, err)
}
