package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/tanvigunjal/Multimodal-RAG/features/document"
	"github.com/tanvigunjal/Multimodal-RAG/features/query"
	"github.com/tanvigunjal/Multimodal-RAG/internal/adapter/gemini"
	"github.com/tanvigunjal/Multimodal-RAG/internal/adapter/reranker"
	"github.com/tanvigunjal/Multimodal-RAG/internal/adapter/unstructured"
	"github.com/tanvigunjal/Multimodal-RAG/internal/agent"
	"github.com/tanvigunjal/Multimodal-RAG/internal/config"
	"github.com/tanvigunjal/Multimodal-RAG/internal/ingest"
	"github.com/tanvigunjal/Multimodal-RAG/internal/jobs"
	"github.com/tanvigunjal/Multimodal-RAG/internal/middleware"
	"github.com/tanvigunjal/Multimodal-RAG/internal/text"
	"github.com/tanvigunjal/Multimodal-RAG/internal/worker"
)

type App struct {
	Handler         http.Handler
	DocumentService *document.Service
	IngestConsumer  *worker.IngestConsumer
	port            int
	closers         []func() error
}

// New wires the feature services, the ingestion pipeline, and the HTTP
// routes on top of the bootstrapped dependencies.
func New(ctx context.Context, cfg *config.Config, deps *Dependencies) (*App, error) {
	policy := retryPolicy(cfg)

	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbedBatchSize, policy)
	if err != nil {
		return nil, fmt.Errorf("embedder init: %w", err)
	}
	llm, err := gemini.NewLLM(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, policy)
	if err != nil {
		return nil, fmt.Errorf("llm init: %w", err)
	}

	// Feature: Document
	jobStore := jobs.NewStore(time.Duration(cfg.JobTTLSeconds) * time.Second)
	docRepo := document.NewPostgresRepo(deps.DB)
	docService := document.NewService(docRepo, deps.NSQProducer, jobStore, cfg.UploadDir)
	docHandler := document.NewHandler(docService, cfg.MaxUploadSizeMB, cfg.MaxZipSizeMB, cfg.MaxFilesPerZip)
	jobHandler := jobs.NewHandler(jobStore)

	// Feature: Query
	queryLogger, err := agent.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = agent.NewQueryLogger(os.Stdout)
	}
	retriever := agent.NewRetriever(embedder, deps.VectorStore, cfg.RetrievalTopK)
	rerankClient := reranker.NewClient(cfg.RerankProvider, cfg.RerankAPIKey, policy)
	queryAgent := agent.New(retriever, rerankClient, llm, cfg.MaxAnswerWords, cfg.RerankTopN, queryLogger)
	queryHandler := query.NewHandler(queryAgent)

	// Ingestion pipeline
	partitioner := unstructured.NewClient(cfg.UnstructuredURL)
	extractor := ingest.NewExtractor(partitioner, cfg.FiguresDir)
	enricher := ingest.NewEnricher(llm, cfg.EnrichParallel)
	splitter := text.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	manager := ingest.NewVectorManager(embedder, deps.VectorStore)
	orchestrator := ingest.NewOrchestrator(extractor, enricher, splitter, manager)

	ingestConsumer := worker.NewIngestConsumer(orchestrator, jobStore, docRepo)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /v1/documents", middleware.CorrelationID(enableCORS(docHandler.Upload)))
	mux.Handle("POST /v1/documents/zip", middleware.CorrelationID(enableCORS(docHandler.UploadZip)))
	mux.Handle("GET /v1/documents", middleware.CorrelationID(enableCORS(docHandler.List)))
	mux.Handle("GET /v1/documents/{id}", middleware.CorrelationID(enableCORS(docHandler.Get)))
	mux.Handle("GET /v1/stats", middleware.CorrelationID(enableCORS(docHandler.Stats)))

	mux.Handle("GET /v1/jobs", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("GET /v1/jobs/{id}", middleware.CorrelationID(enableCORS(jobHandler.Get)))

	mux.Handle("POST /v1/query/invoke", middleware.CorrelationID(enableCORS(queryHandler.Invoke)))
	mux.Handle("POST /v1/query/stream", middleware.CorrelationID(enableCORS(queryHandler.Stream)))
	mux.Handle("POST /v1/query/events", middleware.CorrelationID(enableCORS(queryHandler.Events)))

	mux.Handle("GET /figures/", http.StripPrefix("/figures/", http.FileServer(http.Dir(cfg.FiguresDir))))

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	return &App{
		Handler:         mux,
		DocumentService: docService,
		IngestConsumer:  ingestConsumer,
		port:            cfg.ServerPort,
		closers:         []func() error{embedder.Close, llm.Close},
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.port),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
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

// Close releases the model clients.
func (a *App) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			slog.Warn("failed to close client", "error", err)
		}
	}
}
