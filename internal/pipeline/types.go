package pipeline

import (
	"context"
)

// DefaultNamespace is where markdown vectors land when the caller does not
// pick a partition.
const DefaultNamespace = "markdown-rag"

// Status classifies the outcome of one pipeline run.
type Status string

const (
	// StatusSuccess means vectors were embedded and upserted.
	StatusSuccess Status = "success"

	// StatusHardFail means every request in the batch was individually
	// invalid (unknown URL or missing blob). Retrying the same batch would
	// produce the same result, so callers must not retry.
	StatusHardFail Status = "hardfail"

	// StatusSoftFail means an infrastructure fault aborted the run before
	// any irreversible mutation. The identical batch is safe to retry.
	StatusSoftFail Status = "softfail"
)

// EmbeddingRequest asks for one crawled document to be embedded.
type EmbeddingRequest struct {
	URL       string `json:"url"`
	Namespace string `json:"namespace,omitempty"`
}

// DocumentRecord is the metadata store's row for a crawled document.
type DocumentRecord struct {
	ID                 string
	URL                string
	R2Key              string
	EmbeddingCreatedAt *string
}

// ResolvedDocument is a request that survived lookup and blob fetch. It only
// lives for the duration of one run.
type ResolvedDocument struct {
	Markdown  string
	URL       string
	DocID     string
	R2Key     string
	Namespace string
}

// VectorMetadata is the durable metadata contract written alongside each
// vector. Consumers of the index depend on these fields.
type VectorMetadata struct {
	URL   string `json:"url"`
	DocID string `json:"doc_id"`
	R2Key string `json:"r2_key"`
}

// Vector is one embedding ready for upsert. ID is "<docId>:0"; the chunk
// suffix is fixed at 0 until multi-chunk documents exist.
type Vector struct {
	ID        string
	Values    []float32
	Namespace string
	Metadata  VectorMetadata
}

// EmbedResult is the provider's answer for one batched embed call.
type EmbedResult struct {
	Vectors     [][]float32
	BilledUnits map[string]int
	Warnings    []string
}

// Outcome is the single terminal result of a run, ready for transport
// mapping by an ingress adapter.
type Outcome struct {
	Status      Status         `json:"status"`
	Message     string         `json:"message"`
	HTTPCode    int            `json:"-"`
	BilledUnits map[string]int `json:"billed_units,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// MetadataStore resolves URLs to document records and stamps documents as
// embedded. Lookup returns ErrNotFound for unknown URLs.
type MetadataStore interface {
	Lookup(ctx context.Context, url string) (*DocumentRecord, error)
	MarkEmbedded(ctx context.Context, docID string) error
}

// BlobStore fetches raw markdown by storage key. Returns ErrNotFound when
// the key has no object behind it.
type BlobStore interface {
	Fetch(ctx context.Context, key string) (string, error)
}

// Embedder turns an ordered batch of texts into an ordered batch of vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) (*EmbedResult, error)
}

// VectorIndex upserts vectors by id; re-upserting an id overwrites.
type VectorIndex interface {
	Upsert(ctx context.Context, vectors []Vector) error
}
