package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// VectorManager mediates the pipeline's write access to the vector store:
// duplicate detection before extraction and the embed-then-upsert step at
// the end.
type VectorManager struct {
	embedder Embedder
	store    ChunkStore
}

func NewVectorManager(embedder Embedder, store ChunkStore) *VectorManager {
	return &VectorManager{embedder: embedder, store: store}
}

// IsDocumentProcessed reports whether chunks for fileName already exist.
// A store error resolves to false: ingestion proceeds optimistically
// rather than blocking on a transient lookup failure.
func (m *VectorManager) IsDocumentProcessed(ctx context.Context, fileName string) bool {
	exists, err := m.store.Exists(ctx, fileName)
	if err != nil {
		slog.WarnContext(ctx, "duplicate check failed, proceeding with ingestion", "file", fileName, "error", err)
		return false
	}
	return exists
}

// AddChunks embeds every chunk's content in batches and upserts the
// vectors with their metadata. An empty chunk list is a no-op warning, not
// an error.
func (m *VectorManager) AddChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		slog.WarnContext(ctx, "no chunks to add, skipping vector load")
		return nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}

	vectors, err := m.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	stored := make([]vector.Chunk, len(chunks))
	for i, ch := range chunks {
		stored[i] = vector.Chunk{Content: ch.Content, Record: ch.Record, Vector: vectors[i]}
	}
	if err := m.store.AddChunks(ctx, stored); err != nil {
		return fmt.Errorf("upserting %d chunks: %w", len(stored), err)
	}

	slog.InfoContext(ctx, "chunks loaded into vector store", "count", len(stored))
	return nil
}
