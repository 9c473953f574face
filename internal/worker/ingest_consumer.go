package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nsqio/go-nsq"

	"github.com/tanvigunjal/Multimodal-RAG/internal/ingest"
	"github.com/tanvigunjal/Multimodal-RAG/internal/jobs"
	"github.com/tanvigunjal/Multimodal-RAG/internal/middleware"
)

// IngestConsumer handles ingest.task messages: it runs the pipeline for
// the referenced document and mirrors the outcome into the job store and
// the document registry.
type IngestConsumer struct {
	ingestor Ingestor
	tracker  JobTracker
	docs     DocumentUpdater
}

func NewIngestConsumer(ingestor Ingestor, tracker JobTracker, docs DocumentUpdater) *IngestConsumer {
	return &IngestConsumer{
		ingestor: ingestor,
		tracker:  tracker,
		docs:     docs,
	}
}

func (h *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload IngestTaskPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	ctx := context.Background()
	if payload.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, payload.CorrelationID)
	}

	slog.InfoContext(ctx, "processing ingest task", "job_id", payload.JobID, "file", payload.FileName)

	report := func(step string, percent int) {
		h.tracker.SetProcessing(payload.JobID, step, percent)
	}

	result, err := h.ingestor.Ingest(ctx, payload.FilePath, report)
	if err != nil {
		// Infrastructure failure: record it and let NSQ redeliver.
		slog.ErrorContext(ctx, "ingestion failed", "job_id", payload.JobID, "file", payload.FileName, "error", err)
		h.tracker.Finish(payload.JobID, jobs.StateFailed, err.Error(), 0)
		h.updateStatus(ctx, payload.DocumentID, "failed")
		h.recordFailure(ctx, payload.DocumentID, err.Error())
		return err
	}

	switch result.Status {
	case ingest.StatusDone:
		h.tracker.Finish(payload.JobID, jobs.StateSuccess, "", result.Chunks)
		h.updateStatus(ctx, payload.DocumentID, "completed")
		if err := h.docs.SetChunkCount(ctx, payload.DocumentID, result.Chunks); err != nil {
			slog.WarnContext(ctx, "failed to persist chunk count", "document_id", payload.DocumentID, "error", err)
		}
	case ingest.StatusSkippedDuplicate:
		h.tracker.Finish(payload.JobID, jobs.StateDuplicate, "", 0)
		h.updateStatus(ctx, payload.DocumentID, "duplicate")
	default:
		// Content failure: nothing a redelivery would fix.
		h.tracker.Finish(payload.JobID, jobs.StateFailed, result.Status, 0)
		h.updateStatus(ctx, payload.DocumentID, "failed")
		h.recordFailure(ctx, payload.DocumentID, result.Status)
	}

	slog.InfoContext(ctx, "ingest task finished", "job_id", payload.JobID, "status", result.Status, "chunks", result.Chunks)
	return nil
}

func (h *IngestConsumer) updateStatus(ctx context.Context, documentID, status string) {
	if documentID == "" {
		return
	}
	if err := h.docs.UpdateStatus(ctx, documentID, status); err != nil {
		slog.WarnContext(ctx, "failed to update document status", "document_id", documentID, "status", status, "error", err)
	}
}

func (h *IngestConsumer) recordFailure(ctx context.Context, documentID, reason string) {
	if documentID == "" {
		return
	}
	if err := h.docs.RecordFailure(ctx, documentID, reason); err != nil {
		slog.WarnContext(ctx, "failed to record ingest failure", "document_id", documentID, "error", err)
	}
}
