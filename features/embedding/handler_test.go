package embedding_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"ragmark/backend/features/embedding"
	"ragmark/backend/internal/pipeline"
)

type MockOrchestrator struct{ mock.Mock }

func (m *MockOrchestrator) Run(ctx context.Context, reqs []pipeline.EmbeddingRequest) pipeline.Outcome {
	args := m.Called(ctx, reqs)
	return args.Get(0).(pipeline.Outcome)
}

type MockStatusReader struct{ mock.Mock }

func (m *MockStatusReader) Lookup(ctx context.Context, url string) (*pipeline.DocumentRecord, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.DocumentRecord), args.Error(1)
}

func newHandler() (*embedding.Handler, *MockOrchestrator, *MockStatusReader) {
	orc := new(MockOrchestrator)
	status := new(MockStatusReader)
	return embedding.NewHandler(orc, status, "secret-token"), orc, status
}

func generateRequest(token string, body string) *http.Request {
	req := httptest.NewRequest("POST", "/embeddings", bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestHandler_Generate_Success(t *testing.T) {
	h, orc, _ := newHandler()

	orc.On("Run", mock.Anything, []pipeline.EmbeddingRequest{
		{URL: "https://example.com/a", Namespace: ""},
	}).Return(pipeline.Outcome{
		Status:      pipeline.StatusSuccess,
		Message:     "Successfully upserted vectors",
		HTTPCode:    http.StatusOK,
		BilledUnits: map[string]int{"input_tokens": 7},
	})

	w := httptest.NewRecorder()
	h.Generate(w, generateRequest("secret-token", `{"url":"https://example.com/a"}`))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "Successfully upserted vectors", resp["message"])
	assert.Equal(t, float64(7), resp["billed_units"].(map[string]interface{})["input_tokens"])
	orc.AssertExpectations(t)
}

func TestHandler_Generate_HardFail_404(t *testing.T) {
	h, orc, _ := newHandler()

	orc.On("Run", mock.Anything, mock.Anything).Return(pipeline.Outcome{
		Status:   pipeline.StatusHardFail,
		Message:  "No valid markdown found",
		HTTPCode: http.StatusNotFound,
	})

	w := httptest.NewRecorder()
	h.Generate(w, generateRequest("secret-token", `{"url":"https://example.com/unknown"}`))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hardfail", resp["status"])
}

func TestHandler_Generate_SoftFail_500(t *testing.T) {
	h, orc, _ := newHandler()

	orc.On("Run", mock.Anything, mock.Anything).Return(pipeline.Outcome{
		Status:   pipeline.StatusSoftFail,
		Message:  "embed failed: provider unreachable",
		HTTPCode: http.StatusInternalServerError,
	})

	w := httptest.NewRecorder()
	h.Generate(w, generateRequest("secret-token", `{"url":"https://example.com/a"}`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "softfail", resp["status"])
}

func TestHandler_Generate_Unauthorized(t *testing.T) {
	h, orc, _ := newHandler()

	t.Run("MissingToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Generate(w, generateRequest("", `{"url":"https://example.com/a"}`))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("WrongToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Generate(w, generateRequest("wrong", `{"url":"https://example.com/a"}`))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	orc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestHandler_Generate_MissingURL(t *testing.T) {
	h, orc, _ := newHandler()

	w := httptest.NewRecorder()
	h.Generate(w, generateRequest("secret-token", `{"namespace":"docs"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	orc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestHandler_Generate_InvalidJSON(t *testing.T) {
	h, _, _ := newHandler()

	w := httptest.NewRecorder()
	h.Generate(w, generateRequest("secret-token", `not json`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Generate_NoTokenConfigured(t *testing.T) {
	orc := new(MockOrchestrator)
	h := embedding.NewHandler(orc, new(MockStatusReader), "")

	w := httptest.NewRecorder()
	h.Generate(w, generateRequest("anything", `{"url":"https://example.com/a"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Status(t *testing.T) {
	h, _, status := newHandler()

	ts := "2026-08-01T00:00:00Z"
	status.On("Lookup", mock.Anything, "https://example.com/a").Return(&pipeline.DocumentRecord{
		ID:                 "doc123",
		URL:                "https://example.com/a",
		R2Key:              "crawl/a.md",
		EmbeddingCreatedAt: &ts,
	}, nil)

	req := httptest.NewRequest("GET", "/embeddings/status?url=https%3A%2F%2Fexample.com%2Fa", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()
	h.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "doc123", data["doc_id"])
	assert.Equal(t, "crawl/a.md", data["r2_key"])
	assert.Equal(t, true, data["embedded"])
}

func TestHandler_Status_NotFound(t *testing.T) {
	h, _, status := newHandler()

	status.On("Lookup", mock.Anything, mock.Anything).Return(nil, pipeline.ErrNotFound)

	req := httptest.NewRequest("GET", "/embeddings/status?url=https://example.com/x", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()
	h.Status(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Status_Fault(t *testing.T) {
	h, _, status := newHandler()

	status.On("Lookup", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	req := httptest.NewRequest("GET", "/embeddings/status?url=https://example.com/x", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()
	h.Status(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_Status_MissingURL(t *testing.T) {
	h, _, _ := newHandler()

	req := httptest.NewRequest("GET", "/embeddings/status", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()
	h.Status(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
