package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ragmark/backend/internal/pipeline"
)

const defaultEmbedURL = "https://api.cohere.com/v2/embed"

// Client calls Cohere's embed endpoint. One call embeds a whole batch of
// documents; the response carries one float vector per input in input
// order, plus billed units and any provider warnings.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

type embedRequest struct {
	Model          string   `json:"model"`
	Texts          []string `json:"texts"`
	InputType      string   `json:"input_type"`
	EmbeddingTypes []string `json:"embedding_types"`
}

type embedResponse struct {
	Embeddings struct {
		Float [][]float32 `json:"float"`
	} `json:"embeddings"`
	Meta struct {
		BilledUnits map[string]int `json:"billed_units"`
		Warnings    []string       `json:"warnings"`
	} `json:"meta"`
}

// EmbedDocuments requests search-document embeddings for the batch. The
// whole batch succeeds or fails atomically: a missing or empty vector for
// any input fails the call.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) (*pipeline.EmbedResult, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts to embed")
	}

	url := defaultEmbedURL
	if c.baseURL != "" {
		url = c.baseURL
	}

	body, err := json.Marshal(embedRequest{
		Model:          c.model,
		Texts:          texts,
		InputType:      "search_document",
		EmbeddingTypes: []string{"float"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("cohere api error: %d %s", resp.StatusCode, string(detail))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	vectors := result.Embeddings.Float
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("cohere returned %d embeddings for %d texts", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("cohere returned empty embedding for text %d", i)
		}
	}

	return &pipeline.EmbedResult{
		Vectors:     vectors,
		BilledUnits: result.Meta.BilledUnits,
		Warnings:    result.Meta.Warnings,
	}, nil
}
