package worker

import (
	"context"

	"github.com/tanvigunjal/Multimodal-RAG/internal/ingest"
)

// Ingestor runs the ingestion pipeline for one document.
type Ingestor interface {
	Ingest(ctx context.Context, docPath string, report ingest.ProgressFunc) (ingest.Result, error)
}

// JobTracker receives live status updates for the task being processed.
type JobTracker interface {
	SetProcessing(id, step string, percent int)
	Finish(id, state, errMsg string, chunks int)
}

// DocumentUpdater persists the document's terminal status in the registry.
type DocumentUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) error
	SetChunkCount(ctx context.Context, id string, chunks int) error
	RecordFailure(ctx context.Context, id, reason string) error
}
