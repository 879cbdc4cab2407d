package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ragmark/backend/internal/pipeline"
)

// Store fetches crawled markdown from an S3-compatible bucket (R2, MinIO).
type Store struct {
	client *minio.Client
	bucket string
}

func NewStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("blob client error: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

// NewStoreWithClient wires an existing client, used by tests.
func NewStoreWithClient(client *minio.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Fetch reads the object at key and decodes it as text. A missing object
// maps to pipeline.ErrNotFound so the caller can skip the item.
func (s *Store) Fetch(ctx context.Context, key string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", pipeline.ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}
