package agent

import (
	"context"
	"fmt"

	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// Retriever embeds the query and pulls top-k candidates from the vector
// store.
type Retriever struct {
	embedder QueryEmbedder
	store    SearchStore
	topK     int
}

func NewRetriever(embedder QueryEmbedder, store SearchStore, topK int) *Retriever {
	if topK <= 0 {
		topK = 10
	}
	return &Retriever{embedder: embedder, store: store, topK: topK}
}

// Retrieve returns up to topK candidates for the query. A non-empty
// elementType restricts the search to that chunk type.
func (r *Retriever) Retrieve(ctx context.Context, query, elementType string) ([]vector.Candidate, error) {
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	candidates, err := r.store.Search(ctx, vec, r.topK, elementType)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return candidates, nil
}
