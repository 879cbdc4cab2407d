package pipeline_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"ragmark/backend/internal/pipeline"
)

// Mocks

type MockMetadataStore struct{ mock.Mock }

func (m *MockMetadataStore) Lookup(ctx context.Context, url string) (*pipeline.DocumentRecord, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.DocumentRecord), args.Error(1)
}

func (m *MockMetadataStore) MarkEmbedded(ctx context.Context, docID string) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

type MockBlobStore struct{ mock.Mock }

func (m *MockBlobStore) Fetch(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) (*pipeline.EmbedResult, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.EmbedResult), args.Error(1)
}

type MockVectorIndex struct{ mock.Mock }

func (m *MockVectorIndex) Upsert(ctx context.Context, vectors []pipeline.Vector) error {
	args := m.Called(ctx, vectors)
	return args.Error(0)
}
