package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tanvigunjal/Multimodal-RAG/internal/app"
	"github.com/tanvigunjal/Multimodal-RAG/internal/config"
	"github.com/tanvigunjal/Multimodal-RAG/internal/logger"
)

func main() {
	// Structured logging with correlation id propagation
	baseHandler := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(logger.NewContextHandler(baseHandler)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.DB.Close(); err != nil {
			slog.Warn("failed to close db", "error", err)
		}
		deps.NSQProducer.Stop()
	}()

	application, err := app.New(ctx, cfg, deps)
	if err != nil {
		slog.Error("app init failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if cfg.EnableIngestWorker {
		consumer, err := app.NewIngestConsumer(cfg.NSQLookupd, application.IngestConsumer)
		if err != nil {
			slog.Error("ingest worker init failed", "error", err)
			os.Exit(1)
		}
		defer consumer.Stop()
		slog.Info("ingest worker started", "lookupd", cfg.NSQLookupd)
	}

	if !cfg.EnableAPI {
		slog.Info("api disabled, running worker only")
		<-ctx.Done()
		return
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
