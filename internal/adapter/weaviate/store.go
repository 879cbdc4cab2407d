package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"

	"ragmark/backend/internal/pipeline"
	"ragmark/backend/internal/vector"
)

// Store writes embedding vectors into Weaviate. Object UUIDs are derived
// deterministically from namespace + vector id, so re-upserting the same
// vector id overwrites the previous object instead of duplicating it.
type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// Upsert writes the whole batch in one call. Any per-object error fails the
// batch; nothing has been stamped in the metadata store at that point, so
// the caller retries the full run.
func (s *Store) Upsert(ctx context.Context, vectors []pipeline.Vector) error {
	objects := make([]*models.Object, len(vectors))
	for i, v := range vectors {
		objects[i] = &models.Object{
			Class: vector.ClassName,
			ID:    strfmt.UUID(objectID(v.Namespace, v.ID)),
			Properties: map[string]interface{}{
				"vectorId":  v.ID,
				"url":       v.Metadata.URL,
				"docId":     v.Metadata.DocID,
				"r2Key":     v.Metadata.R2Key,
				"namespace": v.Namespace,
			},
			Vector: v.Values,
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().
		WithObjects(objects...).
		Do(ctx)
	if err != nil {
		return err
	}

	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch upsert error: %s", r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// EnsureSchema creates the embedding class if it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

// objectID maps a vector id to a stable Weaviate UUID within its namespace.
func objectID(namespace, vectorID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(namespace+"/"+vectorID)).String()
}
