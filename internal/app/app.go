package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ragmark/backend/features/embedding"
	"ragmark/backend/internal/adapter/postgres"
	"ragmark/backend/internal/config"
	"ragmark/backend/internal/middleware"
	"ragmark/backend/internal/pipeline"
	"ragmark/backend/internal/worker"
)

// VectorStore is the vector index plus its schema management.
type VectorStore interface {
	pipeline.VectorIndex
	EnsureSchema(ctx context.Context) error
}

type App struct {
	Handler       http.Handler
	Orchestrator  *pipeline.Orchestrator
	EmbedConsumer *worker.EmbedConsumer

	port int
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vecStore VectorStore,
	blobStore pipeline.BlobStore,
	embedder pipeline.Embedder,
) *App {
	docRepo := postgres.NewDocumentRepo(db)

	orchestrator := pipeline.NewOrchestrator(docRepo, blobStore, embedder, vecStore)

	// Ingress: HTTP
	embedHandler := embedding.NewHandler(orchestrator, docRepo, cfg.APIToken)

	mux := http.NewServeMux()
	mux.Handle("POST /embeddings", middleware.CorrelationID(http.HandlerFunc(embedHandler.Generate)))
	mux.Handle("GET /embeddings/status", middleware.CorrelationID(http.HandlerFunc(embedHandler.Status)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Ingress: queue
	embedConsumer := worker.NewEmbedConsumer(
		orchestrator,
		cfg.QueueBatchSize,
		time.Duration(cfg.QueueFlushSeconds)*time.Second,
	)

	return &App{
		Handler:       mux,
		Orchestrator:  orchestrator,
		EmbedConsumer: embedConsumer,
		port:          cfg.ServerPort,
	}
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
