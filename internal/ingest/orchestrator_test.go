package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanvigunjal/Multimodal-RAG/internal/element"
	"github.com/tanvigunjal/Multimodal-RAG/internal/text"
	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// MockPartitioner for Orchestrator tests
type MockPartitioner struct {
	elements []element.Element
	err      error
}

func (m *MockPartitioner) Partition(ctx context.Context, path, imageDir string) ([]element.Element, error) {
	return m.elements, m.err
}

// MockEmbedder for Orchestrator and VectorManager tests
type MockEmbedder struct {
	err   error
	calls int
}

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

// MockChunkStore for Orchestrator and VectorManager tests
type MockChunkStore struct {
	exists    bool
	existsErr error
	addErr    error
	added     []vector.Chunk
}

func (m *MockChunkStore) Exists(ctx context.Context, fileName string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *MockChunkStore) AddChunks(ctx context.Context, chunks []vector.Chunk) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, chunks...)
	return nil
}

func writeTempDoc(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
	return path
}

func newOrchestrator(t *testing.T, part *MockPartitioner, store *MockChunkStore, emb *MockEmbedder) *Orchestrator {
	t.Helper()
	extractor := NewExtractor(part, filepath.Join(t.TempDir(), "figures"))
	enricher := NewEnricher(&MockLLM{}, 2)
	return NewOrchestrator(extractor, enricher, text.NewSplitter(1000, 100), NewVectorManager(emb, store))
}

func TestIngest_HappyPath(t *testing.T) {
	path := writeTempDoc(t)
	part := &MockPartitioner{elements: []element.Element{
		{ID: "e1", Kind: element.KindText, Text: "Some body text.", PageNumber: intPtr(1)},
		{ID: "t1", Kind: element.KindTable, TableHTML: "<table></table>", PageNumber: intPtr(1)},
	}}
	store := &MockChunkStore{}
	emb := &MockEmbedder{}
	o := newOrchestrator(t, part, store, emb)

	var steps []string
	var percents []int
	result, err := o.Ingest(context.Background(), path, func(step string, percent int) {
		steps = append(steps, step)
		percents = append(percents, percent)
	})

	require.NoError(t, err)
	assert.Equal(t, StatusDone, result.Status)
	assert.Equal(t, "report.pdf", result.FileName)
	assert.Equal(t, 2, result.Chunks)
	assert.Len(t, store.added, 2)
	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, []int{10, 25, 50, 70, 85, 100}, percents)
}

func TestIngest_SkipsDuplicate(t *testing.T) {
	path := writeTempDoc(t)
	part := &MockPartitioner{}
	store := &MockChunkStore{exists: true}
	o := newOrchestrator(t, part, store, &MockEmbedder{})

	result, err := o.Ingest(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusSkippedDuplicate, result.Status)
	assert.Empty(t, store.added)
}

func TestIngest_DuplicateCheckErrorProceeds(t *testing.T) {
	path := writeTempDoc(t)
	part := &MockPartitioner{elements: []element.Element{
		{ID: "e1", Kind: element.KindText, Text: "Body.", PageNumber: intPtr(1)},
	}}
	store := &MockChunkStore{existsErr: errors.New("store down")}
	o := newOrchestrator(t, part, store, &MockEmbedder{})

	result, err := o.Ingest(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, result.Status)
}

func TestIngest_FailsWithoutElements(t *testing.T) {
	path := writeTempDoc(t)
	part := &MockPartitioner{err: errors.New("partition backend down")}
	store := &MockChunkStore{}
	o := newOrchestrator(t, part, store, &MockEmbedder{})

	result, err := o.Ingest(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailedNoElements, result.Status)
	assert.Empty(t, store.added)
}

func TestIngest_LoadFailureReturnsError(t *testing.T) {
	path := writeTempDoc(t)
	part := &MockPartitioner{elements: []element.Element{
		{ID: "e1", Kind: element.KindText, Text: "Body.", PageNumber: intPtr(1)},
	}}
	store := &MockChunkStore{addErr: errors.New("upsert failed")}
	o := newOrchestrator(t, part, store, &MockEmbedder{})

	result, err := o.Ingest(context.Background(), path, nil)
	require.Error(t, err)
	assert.Equal(t, StatusFailedLoad, result.Status)
}

func TestVectorManager_EmbedsAndStores(t *testing.T) {
	store := &MockChunkStore{}
	emb := &MockEmbedder{}
	m := NewVectorManager(emb, store)

	chunks := []Chunk{
		{Content: "first", Record: vector.ChunkRecord{ChunkID: "d_c0"}},
		{Content: "second", Record: vector.ChunkRecord{ChunkID: "d_c1"}},
	}
	require.NoError(t, m.AddChunks(context.Background(), chunks))
	require.Len(t, store.added, 2)
	assert.Equal(t, "first", store.added[0].Content)
	assert.Equal(t, []float32{0.1, 0.2}, store.added[0].Vector)
	assert.Equal(t, "d_c1", store.added[1].Record.ChunkID)
}

func TestVectorManager_EmptyChunksNoop(t *testing.T) {
	store := &MockChunkStore{}
	emb := &MockEmbedder{}
	m := NewVectorManager(emb, store)

	require.NoError(t, m.AddChunks(context.Background(), nil))
	assert.Zero(t, emb.calls)
	assert.Empty(t, store.added)
}

func TestVectorManager_EmbedFailure(t *testing.T) {
	store := &MockChunkStore{}
	emb := &MockEmbedder{err: errors.New("quota exceeded")}
	m := NewVectorManager(emb, store)

	err := m.AddChunks(context.Background(), []Chunk{{Content: "x"}})
	require.Error(t, err)
	assert.Empty(t, store.added)
}
