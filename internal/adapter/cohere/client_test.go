package cohere_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"ragmark/backend/internal/adapter/cohere"
)

func TestClient_EmbedDocuments(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k1", r.Header.Get("Authorization"))

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "embed-english-v3.0", req["model"])
		assert.Equal(t, "search_document", req["input_type"])
		assert.Equal(t, []interface{}{"float"}, req["embedding_types"])
		assert.Equal(t, []interface{}{"doc one", "doc two"}, req["texts"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": map[string]interface{}{
				"float": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
			},
			"meta": map[string]interface{}{
				"billed_units": map[string]int{"input_tokens": 4},
				"warnings":     []string{"model deprecated soon"},
			},
		})
	}))
	defer ts.Close()

	client := cohere.NewClient("k1", "embed-english-v3.0")
	client.SetBaseURL(ts.URL)

	res, err := client.EmbedDocuments(context.Background(), []string{"doc one", "doc two"})
	assert.NoError(t, err)
	assert.Len(t, res.Vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, res.Vectors[0])
	assert.Equal(t, []float32{0.3, 0.4}, res.Vectors[1])
	assert.Equal(t, map[string]int{"input_tokens": 4}, res.BilledUnits)
	assert.Equal(t, []string{"model deprecated soon"}, res.Warnings)
}

func TestClient_EmbedDocuments_CountMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": map[string]interface{}{
				"float": [][]float32{{0.1}},
			},
		})
	}))
	defer ts.Close()

	client := cohere.NewClient("k1", "embed-english-v3.0")
	client.SetBaseURL(ts.URL)

	_, err := client.EmbedDocuments(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "1 embeddings for 2 texts")
}

func TestClient_EmbedDocuments_EmptyVector(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": map[string]interface{}{
				"float": [][]float32{{}},
			},
		})
	}))
	defer ts.Close()

	client := cohere.NewClient("k1", "embed-english-v3.0")
	client.SetBaseURL(ts.URL)

	_, err := client.EmbedDocuments(context.Background(), []string{"a"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty embedding")
}

func TestClient_EmbedDocuments_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer ts.Close()

	client := cohere.NewClient("k1", "embed-english-v3.0")
	client.SetBaseURL(ts.URL)

	_, err := client.EmbedDocuments(context.Background(), []string{"a"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cohere api error: 429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestClient_EmbedDocuments_EmptyBatch(t *testing.T) {
	client := cohere.NewClient("k1", "embed-english-v3.0")
	_, err := client.EmbedDocuments(context.Background(), nil)
	assert.Error(t, err)
}
