package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/config"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)

	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vkClient.Close()
	logger.Info("connected to valkey")

	producer := syncpkg.NewProducer(vkClient)

	logger.Info("starting scheduler", slog.Duration("tick", cfg.Sync.Interval))

	ticker := time.NewTicker(cfg.Sync.Interval)
	defer ticker.Stop()

	// One pass on startup so a freshly registered scope does not wait a
	// full interval.
	tick(ctx, logger, s, producer)

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			tick(ctx, logger, s, producer)
		}
	}
}

// tick enqueues a run for every scope whose interval has elapsed and that
// is not already queued or running.
func tick(ctx context.Context, logger *slog.Logger, s *store.Store, producer *syncpkg.Producer) {
	scopes, err := s.ListScopes(ctx)
	if err != nil {
		logger.Error("list scopes failed", slog.String("error", err.Error()))
		return
	}

	for _, scope := range scopes {
		if ctx.Err() != nil {
			return
		}

		active, err := s.HasActiveRun(ctx, scope.ID)
		if err != nil {
			logger.Error("check active run failed", slog.String("scope_id", scope.ID.String()), slog.String("error", err.Error()))
			continue
		}
		if active {
			continue
		}

		state, err := s.GetSyncState(ctx, scope.ID)
		if err != nil {
			logger.Error("load sync state failed", slog.String("scope_id", scope.ID.String()), slog.String("error", err.Error()))
			continue
		}
		if state.LastRunAt != nil && time.Since(*state.LastRunAt) < scope.SyncInterval {
			continue
		}

		run, err := s.CreateSyncRun(ctx, postgres.CreateSyncRunParams{ScopeID: scope.ID})
		if err != nil {
			logger.Error("create sync run failed", slog.String("scope_id", scope.ID.String()), slog.String("error", err.Error()))
			continue
		}

		if _, err := producer.Enqueue(ctx, syncpkg.SyncMessage{
			RunID:   run.ID,
			ScopeID: scope.ID,
			Trigger: "schedule",
		}); err != nil {
			logger.Error("enqueue sync run failed", slog.String("scope_id", scope.ID.String()), slog.String("error", err.Error()))
			continue
		}

		logger.Info("scheduled sync run",
			slog.String("scope_id", scope.ID.String()),
			slog.String("run_id", run.ID.String()))
	}
}
