package ingest

import (
	"context"
	"log/slog"
	"os"

	"github.com/tanvigunjal/Multimodal-RAG/internal/element"
)

// Extractor partitions a source document into ordered content elements.
// Extraction failures are logged and reported as an empty element list so
// the orchestrator can abort the document without an exception path.
type Extractor struct {
	partitioner Partitioner
	imageDir    string
}

func NewExtractor(partitioner Partitioner, imageDir string) *Extractor {
	return &Extractor{partitioner: partitioner, imageDir: imageDir}
}

// Extract returns the document's elements in reading order, or an empty
// list when the backend fails or the document is unreadable.
func (e *Extractor) Extract(ctx context.Context, docPath string) []element.Element {
	if _, err := os.Stat(docPath); err != nil {
		slog.ErrorContext(ctx, "document not accessible", "path", docPath, "error", err)
		return nil
	}
	if err := os.MkdirAll(e.imageDir, 0o750); err != nil {
		slog.ErrorContext(ctx, "failed to create image output dir", "dir", e.imageDir, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "starting document partitioning", "path", docPath)
	elements, err := e.partitioner.Partition(ctx, docPath, e.imageDir)
	if err != nil {
		slog.ErrorContext(ctx, "partitioning failed", "path", docPath, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "extraction complete", "path", docPath, "elements", len(elements))
	return elements
}
