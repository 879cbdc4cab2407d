package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"ragmark/backend/internal/app"
	"ragmark/backend/internal/config"
	"ragmark/backend/internal/logger"
)

func main() {
	// Structured JSON logs with the correlation id pulled from context.
	base := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(base)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("app exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.DB.Close()

	a := app.New(cfg, deps.DB, deps.VectorStore, deps.BlobStore, deps.Embedder)

	// Queue ingress: one consumer instance, at most one batch in flight.
	nsqCfg := nsq.NewConfig()
	nsqCfg.MaxInFlight = cfg.QueueBatchSize
	consumer, err := nsq.NewConsumer(config.TopicEmbedGenerate, config.ChannelEmbedder, nsqCfg)
	if err != nil {
		slog.Error("failed to create NSQ consumer", "error", err)
	} else {
		consumer.AddHandler(a.EmbedConsumer)
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			slog.Error("failed to connect to NSQLookupd", "error", err)
		} else {
			slog.Info("NSQ embed consumer connected", "topic", config.TopicEmbedGenerate)
		}
		defer func() {
			consumer.Stop()
			<-consumer.StopChan
			a.EmbedConsumer.Flush()
		}()
	}

	return a.Run(ctx)
}
