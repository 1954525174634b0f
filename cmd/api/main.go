package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/api"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/config"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/connector"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/embedding"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/query"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/postgres"
	vk "github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/valkey"
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

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)

	// Valkey backs the sync job queue.
	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vkClient.Close()
	logger.Info("connected to valkey")

	// Embeddings (auto-selects: OpenRouter > Bedrock > disabled)
	embedder, err := embedding.NewEmbedder(cfg)
	if err != nil {
		logger.Warn("embedder init failed, lexical search only", slog.String("error", err.Error()))
	} else if embedder != nil {
		logger.Info("embeddings enabled", slog.String("provider", fmt.Sprintf("%T", embedder)), slog.String("model", embedder.ModelID()))
	}

	// The API only validates source kinds; connectors run in the worker.
	registry := connector.NewRegistry()
	if s3Conn, err := connector.NewS3Connector(cfg.S3); err != nil {
		logger.Warn("s3 connector init failed", slog.String("error", err.Error()))
	} else {
		registry.Register(connector.KindS3, s3Conn)
	}

	router := api.NewRouter(logger, s, api.RouterDeps{
		Producer:    syncpkg.NewProducer(vkClient),
		Search:      query.NewService(s, embedder, logger),
		SourceKinds: registry.Kinds(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
