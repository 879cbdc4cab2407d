package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Orchestrator runs the embedding pipeline: resolve each request against the
// metadata and blob stores, embed all resolved documents in one batched
// provider call, upsert the vectors, then stamp each document as embedded.
type Orchestrator struct {
	metadata MetadataStore
	blobs    BlobStore
	embedder Embedder
	index    VectorIndex
}

func NewOrchestrator(m MetadataStore, b BlobStore, e Embedder, v VectorIndex) *Orchestrator {
	return &Orchestrator{
		metadata: m,
		blobs:    b,
		embedder: e,
		index:    v,
	}
}

// Run processes one batch of requests and produces exactly one Outcome.
// Skippable items (unknown URL, missing blob) are dropped; infrastructure
// faults abort the run as softfail; a batch with nothing left to embed is a
// hardfail that callers must not retry.
func (o *Orchestrator) Run(ctx context.Context, reqs []EmbeddingRequest) Outcome {
	docs, err := o.resolve(ctx, reqs)
	if err != nil {
		return softFail(ctx, err)
	}

	if len(docs) == 0 {
		slog.WarnContext(ctx, "no requests resolved to markdown", "requested", len(reqs))
		return Outcome{
			Status:   StatusHardFail,
			Message:  "No valid markdown found",
			HTTPCode: http.StatusNotFound,
		}
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Markdown
	}

	res, err := o.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return softFail(ctx, stepErr(StepEmbed, err))
	}

	vectors := make([]Vector, len(docs))
	for i, d := range docs {
		vectors[i] = Vector{
			// Chunk index is fixed at 0; the suffix is part of the index's
			// id contract and reserved for multi-chunk documents.
			ID:        fmt.Sprintf("%s:0", d.DocID),
			Values:    res.Vectors[i],
			Namespace: d.Namespace,
			Metadata: VectorMetadata{
				URL:   d.URL,
				DocID: d.DocID,
				R2Key: d.R2Key,
			},
		}
	}

	if err := o.index.Upsert(ctx, vectors); err != nil {
		return softFail(ctx, stepErr(StepUpsert, err))
	}

	// Best-effort tail: the vectors are durable, so a missed timestamp only
	// means the document may be re-embedded later. Failures are isolated
	// per document and never surfaced.
	for _, d := range docs {
		if err := o.metadata.MarkEmbedded(ctx, d.DocID); err != nil {
			slog.ErrorContext(ctx, "failed to mark document embedded",
				"error", stepErr(StepUpdate, err), "doc_id", d.DocID, "url", d.URL)
		}
	}

	slog.InfoContext(ctx, "upserted vectors", "count", len(vectors))
	return Outcome{
		Status:      StatusSuccess,
		Message:     "Successfully upserted vectors",
		HTTPCode:    http.StatusOK,
		BilledUnits: res.BilledUnits,
		Warnings:    res.Warnings,
	}
}

// resolve walks the batch in order, dropping items whose URL or blob is
// unknown. Any other fault aborts resolution.
func (o *Orchestrator) resolve(ctx context.Context, reqs []EmbeddingRequest) ([]ResolvedDocument, error) {
	var docs []ResolvedDocument
	for _, req := range reqs {
		ns := req.Namespace
		if ns == "" {
			ns = DefaultNamespace
		}

		rec, err := o.metadata.Lookup(ctx, req.URL)
		if errors.Is(err, ErrNotFound) {
			slog.WarnContext(ctx, "url not in metadata store, skipping", "url", req.URL)
			continue
		}
		if err != nil {
			return nil, stepErr(StepLookup, err)
		}

		markdown, err := o.blobs.Fetch(ctx, rec.R2Key)
		if errors.Is(err, ErrNotFound) {
			slog.WarnContext(ctx, "blob missing, skipping", "url", req.URL, "r2_key", rec.R2Key)
			continue
		}
		if err != nil {
			return nil, stepErr(StepFetch, err)
		}

		docs = append(docs, ResolvedDocument{
			Markdown:  markdown,
			URL:       req.URL,
			DocID:     rec.ID,
			R2Key:     rec.R2Key,
			Namespace: ns,
		})
	}
	return docs, nil
}

func softFail(ctx context.Context, err error) Outcome {
	slog.ErrorContext(ctx, "pipeline run aborted", "error", err)
	return Outcome{
		Status:   StatusSoftFail,
		Message:  err.Error(),
		HTTPCode: http.StatusInternalServerError,
	}
}
