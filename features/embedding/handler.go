package embedding

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ragmark/backend/internal/middleware"
	"ragmark/backend/internal/pipeline"
)

// Orchestrator runs one batch of embedding requests to a single outcome.
type Orchestrator interface {
	Run(ctx context.Context, reqs []pipeline.EmbeddingRequest) pipeline.Outcome
}

// StatusReader resolves a URL to its metadata record.
type StatusReader interface {
	Lookup(ctx context.Context, url string) (*pipeline.DocumentRecord, error)
}

// Handler is the HTTP ingress adapter: it authenticates the caller, builds
// the request batch, and maps the pipeline outcome onto an HTTP response.
type Handler struct {
	orchestrator Orchestrator
	status       StatusReader
	apiToken     string
}

func NewHandler(o Orchestrator, s StatusReader, apiToken string) *Handler {
	return &Handler{orchestrator: o, status: s, apiToken: apiToken}
}

// Generate handles POST /embeddings.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.writeError(r.Context(), w, "UNAUTHORIZED", "Invalid or missing bearer token", http.StatusUnauthorized)
		return
	}

	var req struct {
		URL       string `json:"url"`
		Namespace string `json:"namespace"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "URL is required", http.StatusBadRequest)
		return
	}

	outcome := h.orchestrator.Run(r.Context(), []pipeline.EmbeddingRequest{
		{URL: req.URL, Namespace: req.Namespace},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(outcome.HTTPCode)
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Status handles GET /embeddings/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.writeError(r.Context(), w, "UNAUTHORIZED", "Invalid or missing bearer token", http.StatusUnauthorized)
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "url query parameter is required", http.StatusBadRequest)
		return
	}

	rec, err := h.status.Lookup(r.Context(), url)
	if errors.Is(err, pipeline.ErrNotFound) {
		h.writeError(r.Context(), w, "NOT_FOUND", "Document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "status lookup failed", "error", err, "url", url)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": map[string]interface{}{
			"doc_id":               rec.ID,
			"url":                  rec.URL,
			"r2_key":               rec.R2Key,
			"embedded":             rec.EmbeddingCreatedAt != nil,
			"embedding_created_at": rec.EmbeddingCreatedAt,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// authorized requires an exact bearer-token match against the configured
// secret. No token configured means no caller can pass.
func (h *Handler) authorized(r *http.Request) bool {
	if h.apiToken == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	expected := "Bearer " + h.apiToken
	return subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) == 1
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
