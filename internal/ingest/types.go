package ingest

import (
	"context"

	"github.com/tanvigunjal/Multimodal-RAG/internal/element"
	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// Partitioner is the extraction backend: it turns a document into ordered
// elements, writing extracted images into imageDir.
type Partitioner interface {
	Partition(ctx context.Context, path, imageDir string) ([]element.Element, error)
}

// DescriptionGenerator produces natural-language descriptions for table and
// image elements.
type DescriptionGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	CaptionImage(ctx context.Context, imagePath, prompt string) (string, error)
}

// Embedder turns document chunks into vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkStore is the vector store surface the write path depends on.
type ChunkStore interface {
	Exists(ctx context.Context, fileName string) (bool, error)
	AddChunks(ctx context.Context, chunks []vector.Chunk) error
}

// ProgressFunc receives a human-readable step label and a monotonically
// increasing completion percentage. Passed by the job-status layer; the
// pipeline only ever calls it, never reads back.
type ProgressFunc func(step string, percent int)

// Chunk is one unit of the chunker's output before embedding: the content
// to embed plus the flattened metadata record it will be stored with.
type Chunk struct {
	Content string
	Record  vector.ChunkRecord
}
