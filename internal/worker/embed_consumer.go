package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"
	"ragmark/backend/internal/middleware"
	"ragmark/backend/internal/pipeline"
)

// EmbedConsumer is the queue ingress adapter. It collects messages into a
// batch of up to batchSize, runs one pipeline per batch, and acks or
// requeues the whole batch on the outcome: success and hardfail both ack
// (retrying an all-invalid batch cannot help), softfail requeues everything
// for redelivery. The batch is the atomic unit of retry; there is no
// per-message granularity.
type EmbedConsumer struct {
	orchestrator Orchestrator
	batchSize    int
	flushEvery   time.Duration

	mu      sync.Mutex
	pending []pendingMessage
	timer   *time.Timer
}

type pendingMessage struct {
	msg *nsq.Message
	req pipeline.EmbeddingRequest
}

func NewEmbedConsumer(o Orchestrator, batchSize int, flushEvery time.Duration) *EmbedConsumer {
	return &EmbedConsumer{
		orchestrator: o,
		batchSize:    batchSize,
		flushEvery:   flushEvery,
	}
}

func (h *EmbedConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload EmbedTaskPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}
	if payload.URL == "" {
		slog.Error("poison pill: missing url, dropping")
		return nil
	}

	// The message joins a batch; it is finished or requeued when the batch
	// runs, not when this handler returns.
	m.DisableAutoResponse()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.pending = append(h.pending, pendingMessage{
		msg: m,
		req: pipeline.EmbeddingRequest{URL: payload.URL, Namespace: payload.Namespace},
	})

	if len(h.pending) >= h.batchSize {
		if h.timer != nil {
			h.timer.Stop()
			h.timer = nil
		}
		h.flushLocked(payload.CorrelationID)
		return nil
	}

	if h.timer == nil {
		h.timer = time.AfterFunc(h.flushEvery, func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.timer = nil
			h.flushLocked("")
		})
	}
	return nil
}

// Flush runs any buffered partial batch. Called on shutdown so queued
// messages are not left un-acked until their timeout.
func (h *EmbedConsumer) Flush() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.flushLocked("")
}

// flushLocked runs the pipeline for the buffered batch. The mutex is held
// for the duration of the run, so at most one batch is in flight per
// consumer instance.
func (h *EmbedConsumer) flushLocked(correlationID string) {
	if len(h.pending) == 0 {
		return
	}
	batch := h.pending
	h.pending = nil

	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	reqs := make([]pipeline.EmbeddingRequest, len(batch))
	for i, p := range batch {
		reqs[i] = p.req
	}

	outcome := h.orchestrator.Run(ctx, reqs)

	switch outcome.Status {
	case pipeline.StatusSoftFail:
		slog.WarnContext(ctx, "batch requeued", "size", len(batch), "message", outcome.Message)
		for _, p := range batch {
			p.msg.Requeue(-1)
		}
	default:
		slog.InfoContext(ctx, "batch acknowledged", "size", len(batch), "status", outcome.Status)
		for _, p := range batch {
			p.msg.Finish()
		}
	}
}
