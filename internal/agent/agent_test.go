package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// MockEmbedder for Agent tests
type MockQueryEmbedder struct {
	err error
}

func (m *MockQueryEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []float32{0.5, 0.5}, nil
}

// MockSearchStore for Agent tests
type MockSearchStore struct {
	general  []vector.Candidate
	filtered map[string][]vector.Candidate
	calls    []string
}

func (m *MockSearchStore) Search(ctx context.Context, queryVector []float32, limit int, elementType string) ([]vector.Candidate, error) {
	m.calls = append(m.calls, elementType)
	if elementType == "" {
		return m.general, nil
	}
	return m.filtered[elementType], nil
}

// MockReranker for Agent tests
type MockReranker struct {
	gotDocs []string
	indices []int
	err     error
}

func (m *MockReranker) Rerank(ctx context.Context, query string, docs []string, topN int) ([]int, error) {
	m.gotDocs = docs
	if m.err != nil {
		return nil, m.err
	}
	if m.indices != nil {
		return m.indices, nil
	}
	n := len(docs)
	if n > topN {
		n = topN
	}
	identity := make([]int, n)
	for i := range identity {
		identity[i] = i
	}
	return identity, nil
}

// MockGenerator for Agent tests
type MockGenerator struct {
	lastSystem string
	lastUser   string
	answer     []string
}

func (m *MockGenerator) Stream(ctx context.Context, systemPrompt, userPrompt string) (<-chan string, <-chan error) {
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	return streamOf(m.answer...)
}

func cand(content string) vector.Candidate {
	return vector.Candidate{Content: content, Record: vector.ChunkRecord{FileName: "doc.pdf"}}
}

func newAgent(store *MockSearchStore, reranker *MockReranker, gen *MockGenerator) *Agent {
	retriever := NewRetriever(&MockQueryEmbedder{}, store, 10)
	return New(retriever, reranker, gen, 250, 5, nil)
}

func TestRun_GeneralSearchOnly(t *testing.T) {
	store := &MockSearchStore{general: []vector.Candidate{cand("a"), cand("b")}}
	reranker := &MockReranker{}
	gen := &MockGenerator{answer: []string{"answer"}}
	a := newAgent(store, reranker, gen)

	resp, err := a.Run(context.Background(), "what is the conclusion?")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, store.calls)
	assert.Len(t, resp.Sources(), 2)
}

func TestRun_PreferenceAddsFilteredSearch(t *testing.T) {
	store := &MockSearchStore{
		general:  []vector.Candidate{cand("a")},
		filtered: map[string][]vector.Candidate{"image": {cand("img")}},
	}
	reranker := &MockReranker{}
	gen := &MockGenerator{answer: []string{"answer"}}
	a := newAgent(store, reranker, gen)

	resp, err := a.Run(context.Background(), "show me the figure")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "image"}, store.calls)
	assert.Len(t, resp.Sources(), 2)
}

func TestRun_DedupsBeforeRerank(t *testing.T) {
	store := &MockSearchStore{
		general:  []vector.Candidate{cand("same"), cand("other")},
		filtered: map[string][]vector.Candidate{"table": {cand("same")}},
	}
	reranker := &MockReranker{}
	gen := &MockGenerator{answer: []string{"answer"}}
	a := newAgent(store, reranker, gen)

	_, err := a.Run(context.Background(), "explain the table")
	require.NoError(t, err)
	assert.Equal(t, []string{"same", "other"}, reranker.gotDocs)
}

func TestRun_RerankOrderApplied(t *testing.T) {
	store := &MockSearchStore{general: []vector.Candidate{cand("first"), cand("second"), cand("third")}}
	reranker := &MockReranker{indices: []int{2, 0}}
	gen := &MockGenerator{answer: []string{"answer"}}
	a := newAgent(store, reranker, gen)

	resp, err := a.Run(context.Background(), "anything?")
	require.NoError(t, err)
	require.Len(t, resp.Sources(), 2)
	assert.Equal(t, "third", resp.Sources()[0].Content)
	assert.Equal(t, "first", resp.Sources()[1].Content)
}

func TestRun_OutOfRangeIndicesSkipped(t *testing.T) {
	store := &MockSearchStore{general: []vector.Candidate{cand("only")}}
	reranker := &MockReranker{indices: []int{0, 5}}
	gen := &MockGenerator{answer: []string{"answer"}}
	a := newAgent(store, reranker, gen)

	resp, err := a.Run(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Len(t, resp.Sources(), 1)
}

func TestRun_EmptyCandidatesSkipsRerank(t *testing.T) {
	store := &MockSearchStore{}
	reranker := &MockReranker{err: errors.New("must not be called")}
	gen := &MockGenerator{answer: []string{"no context answer"}}
	a := newAgent(store, reranker, gen)

	resp, err := a.Run(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Empty(t, resp.Sources())
	assert.Nil(t, reranker.gotDocs)
	assert.Contains(t, gen.lastUser, "(no context)")
}

func TestRun_RerankErrorPropagates(t *testing.T) {
	store := &MockSearchStore{general: []vector.Candidate{cand("a")}}
	reranker := &MockReranker{err: errors.New("rerank api down")}
	gen := &MockGenerator{}
	a := newAgent(store, reranker, gen)

	_, err := a.Run(context.Background(), "anything?")
	require.Error(t, err)
}

func TestRun_EmbedErrorPropagates(t *testing.T) {
	retriever := NewRetriever(&MockQueryEmbedder{err: errors.New("quota")}, &MockSearchStore{}, 10)
	a := New(retriever, &MockReranker{}, &MockGenerator{}, 250, 5, nil)

	_, err := a.Run(context.Background(), "anything?")
	require.Error(t, err)
}

func TestRun_PromptCarriesContextAndQuery(t *testing.T) {
	store := &MockSearchStore{general: []vector.Candidate{cand("body text")}}
	gen := &MockGenerator{answer: []string{"answer"}}
	a := newAgent(store, &MockReranker{}, gen)

	_, err := a.Run(context.Background(), "the question")
	require.NoError(t, err)
	assert.Contains(t, gen.lastSystem, "Maximum 250 words")
	assert.Contains(t, gen.lastUser, "text: body text")
	assert.Contains(t, gen.lastUser, "Query: the question")
}
