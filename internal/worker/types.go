package worker

import (
	"context"

	"ragmark/backend/internal/pipeline"
)

// EmbedTaskPayload is one queued embedding request.
type EmbedTaskPayload struct {
	URL           string `json:"url"`
	Namespace     string `json:"namespace,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Orchestrator runs one batch of embedding requests to a single outcome.
type Orchestrator interface {
	Run(ctx context.Context, reqs []pipeline.EmbeddingRequest) pipeline.Outcome
}
