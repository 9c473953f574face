package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/tanvigunjal/Multimodal-RAG/internal/text"
)

// Terminal pipeline outcomes.
const (
	StatusDone             = "DONE"
	StatusSkippedDuplicate = "SKIPPED_DUPLICATE"
	StatusFailedNoElements = "FAILED_NO_ELEMENTS"
	StatusFailedNoChunks   = "FAILED_NO_CHUNKS"
	StatusFailedLoad       = "FAILED_LOAD"
)

// Result is the outcome of one document's ingestion run.
type Result struct {
	Status   string
	FileName string
	Chunks   int
}

// Orchestrator drives one document through the full ingestion pipeline:
// duplicate check, extraction, enrichment, chunking, and vector load.
type Orchestrator struct {
	extractor *Extractor
	enricher  *Enricher
	splitter  *text.Splitter
	manager   *VectorManager
}

func NewOrchestrator(extractor *Extractor, enricher *Enricher, splitter *text.Splitter, manager *VectorManager) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		enricher:  enricher,
		splitter:  splitter,
		manager:   manager,
	}
}

// Ingest runs the pipeline for the document at docPath. Progress
// checkpoints are reported through report, which may be nil. The returned
// error is non-nil only for load failures; empty extraction or chunking
// resolve to failed Results without an error so callers can distinguish
// content problems from infrastructure ones.
func (o *Orchestrator) Ingest(ctx context.Context, docPath string, report ProgressFunc) (Result, error) {
	if report == nil {
		report = func(string, int) {}
	}
	fileName := filepath.Base(docPath)
	logger := slog.With("document", fileName)

	report("checking for duplicates", 10)
	if o.manager.IsDocumentProcessed(ctx, fileName) {
		logger.InfoContext(ctx, "document already ingested, skipping")
		return Result{Status: StatusSkippedDuplicate, FileName: fileName}, nil
	}

	report("extracting content", 25)
	elements := o.extractor.Extract(ctx, docPath)
	if len(elements) == 0 {
		logger.ErrorContext(ctx, "extraction produced no elements")
		return Result{Status: StatusFailedNoElements, FileName: fileName}, nil
	}

	report("enriching tables and images", 50)
	enriched := o.enricher.Enrich(ctx, elements)

	report("chunking", 70)
	chunker := NewChunker(docPath, o.splitter)
	chunks := chunker.CreateChunks(elements, enriched)
	if len(chunks) == 0 {
		logger.ErrorContext(ctx, "chunking produced no chunks")
		return Result{Status: StatusFailedNoChunks, FileName: fileName}, nil
	}

	report("loading into vector store", 85)
	if err := o.manager.AddChunks(ctx, chunks); err != nil {
		logger.ErrorContext(ctx, "vector load failed", "error", err)
		return Result{Status: StatusFailedLoad, FileName: fileName}, fmt.Errorf("loading %s: %w", fileName, err)
	}

	report("done", 100)
	logger.InfoContext(ctx, "ingestion complete", "chunks", len(chunks))
	return Result{Status: StatusDone, FileName: fileName, Chunks: len(chunks)}, nil
}
