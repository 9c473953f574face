package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tanvigunjal/Multimodal-RAG/internal/middleware"
	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// Agent orchestrates the full query pipeline: analyze, retrieve, dedup,
// rerank, format, and stream the generated answer.
type Agent struct {
	retriever *Retriever
	reranker  Reranker
	generator Generator
	maxWords  int
	topN      int
	queryLog  *QueryLogger
}

func New(retriever *Retriever, reranker Reranker, generator Generator, maxWords, topN int, queryLog *QueryLogger) *Agent {
	if topN <= 0 {
		topN = 5
	}
	return &Agent{
		retriever: retriever,
		reranker:  reranker,
		generator: generator,
		maxWords:  maxWords,
		topN:      topN,
		queryLog:  queryLog,
	}
}

// Run executes the pipeline for one query and returns the streaming
// response. Generation starts immediately; the caller consumes the token
// stream or calls Finalize for the complete answer.
func (a *Agent) Run(ctx context.Context, query string) (*StreamingResponse, error) {
	start := time.Now()
	logger := slog.With("query", query)

	preference := ContentPreference(query)
	if preference != "" {
		logger.InfoContext(ctx, "detected content preference", "preference", preference)
	}

	candidates, err := a.retriever.Retrieve(ctx, query, "")
	if err != nil {
		return nil, err
	}
	if preference != "" {
		boosted, err := a.retriever.Retrieve(ctx, query, preference)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, boosted...)
	}

	unique := dedupByContent(candidates)
	logger.InfoContext(ctx, "retrieved candidates", "total", len(candidates), "unique", len(unique))

	final, err := a.rerank(ctx, query, unique)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "reranked candidates", "final", len(final))

	contextStr := FormatContext(final)
	tokens, errs := a.generator.Stream(ctx, SystemPrompt(a.maxWords), UserPrompt(contextStr, query))

	if a.queryLog != nil {
		a.queryLog.Log(QueryLogEntry{
			Query:         query,
			Preference:    preference,
			NumCandidates: len(unique),
			NumResults:    len(final),
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}

	return NewStreamingResponse(tokens, errs, final), nil
}

func (a *Agent) rerank(ctx context.Context, query string, docs []vector.Candidate) ([]vector.Candidate, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}
	indices, err := a.reranker.Rerank(ctx, query, contents, a.topN)
	if err != nil {
		return nil, fmt.Errorf("reranking: %w", err)
	}

	reranked := make([]vector.Candidate, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(docs) {
			reranked = append(reranked, docs[idx])
		}
	}
	return reranked, nil
}

// dedupByContent drops candidates whose content was already seen, keeping
// first-encounter order.
func dedupByContent(docs []vector.Candidate) []vector.Candidate {
	seen := map[string]bool{}
	unique := make([]vector.Candidate, 0, len(docs))
	for _, d := range docs {
		if seen[d.Content] {
			continue
		}
		seen[d.Content] = true
		unique = append(unique, d)
	}
	return unique
}
