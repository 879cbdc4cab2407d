package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ragmark/backend/internal/pipeline"
)

// DocumentRepo reads and stamps crawled-document metadata. The documents
// table is the system of record; this service only ever sets the
// embedding timestamp.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Lookup resolves a URL to its document record. The URL is matched exactly
// as supplied. Unknown URLs map to pipeline.ErrNotFound so the caller can
// treat them as skippable rather than as faults.
func (r *DocumentRepo) Lookup(ctx context.Context, url string) (*pipeline.DocumentRecord, error) {
	rec := &pipeline.DocumentRecord{}
	var embeddedAt sql.NullString
	query := `SELECT id, url, r2_key, embedding_created_at FROM documents WHERE url = $1`
	err := r.db.QueryRowContext(ctx, query, url).Scan(&rec.ID, &rec.URL, &rec.R2Key, &embeddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pipeline.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if embeddedAt.Valid {
		rec.EmbeddingCreatedAt = &embeddedAt.String
	}
	return rec, nil
}

// MarkEmbedded stamps the document's embedding timestamp with the current
// time.
func (r *DocumentRepo) MarkEmbedded(ctx context.Context, docID string) error {
	query := `UPDATE documents SET embedding_created_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, docID)
	return err
}
