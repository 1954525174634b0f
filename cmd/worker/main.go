package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/config"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/connector"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/embedding"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/sink"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store"
	minioclient "github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/minio"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/postgres"
	vk "github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/valkey"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/transform"
	syncpkg "github.com/winatecommerce96/emailpilot-rag-sub000/internal/sync"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)

	// Valkey
	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vkClient.Close()
	logger.Info("connected to valkey")

	// MinIO backs artifact storage.
	minioClient, err := minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("failed to connect to minio", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := minioClient.EnsureBucket(ctx); err != nil {
		logger.Error("failed to ensure artifact bucket", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to minio")

	// Connectors
	registry := connector.NewRegistry()
	s3Conn, err := connector.NewS3Connector(cfg.S3)
	if err != nil {
		logger.Error("s3 connector init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	registry.Register(connector.KindS3, s3Conn)

	// Embeddings (auto-selects: OpenRouter > Bedrock > disabled)
	embedder, err := embedding.NewEmbedder(cfg)
	if err != nil {
		logger.Warn("embedder init failed, indexing without vectors", slog.String("error", err.Error()))
	} else if embedder != nil {
		logger.Info("embeddings enabled", slog.String("provider", fmt.Sprintf("%T", embedder)), slog.String("model", embedder.ModelID()))
	}

	// Transformer: AI tier when a key is configured, keyword fallback always.
	var aiClient transform.AIClient
	if c := transform.NewChatClient(cfg.AI); c != nil {
		aiClient = c
		logger.Info("ai transform enabled", slog.String("model", cfg.AI.Model))
	} else {
		logger.Info("ai transform disabled, using keyword extractor only")
	}
	transformer := transform.NewTransformer(aiClient, transform.Options{
		Timeout:    cfg.AI.Timeout,
		RatePerSec: cfg.AI.RatePerSec,
		RateBurst:  cfg.AI.RateBurst,
	}, logger)

	writer := sink.NewWriter(s, minioClient, embedder, logger)

	lock := syncpkg.NewRunLock(vkClient, cfg.Sync.LockTTL)

	orchestrator := syncpkg.NewOrchestrator(s, registry, transformer, writer, lock, syncpkg.Tunables{
		Concurrency:     cfg.Sync.Concurrency,
		ProcessedMaxAge: cfg.Sync.ProcessedMaxAge,
		LogCap:          cfg.Sync.LogCap,
	}, logger)

	consumer := syncpkg.NewConsumer(vkClient, "worker-1", logger)
	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Error("failed to ensure consumer group", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("starting sync worker, consuming from stream", slog.String("stream", syncpkg.StreamName))
	if err := consumer.Consume(ctx, orchestrator.Handle); err != nil {
		if ctx.Err() == nil {
			logger.Error("consumer error", slog.String("error", err.Error()))
		}
	}

	logger.Info("worker stopped")
}
