package agent

import (
	"context"

	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// QueryEmbedder turns the user query into a search vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SearchStore is the vector store surface the read path depends on. An
// empty elementType means an unfiltered search.
type SearchStore interface {
	Search(ctx context.Context, queryVector []float32, limit int, elementType string) ([]vector.Candidate, error)
}

// Reranker reorders candidate documents by relevance to the query and
// returns the indices of the top results, best first.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []string, topN int) ([]int, error)
}

// Generator streams a model answer given a system and user prompt.
type Generator interface {
	Stream(ctx context.Context, systemPrompt, userPrompt string) (<-chan string, <-chan error)
}
