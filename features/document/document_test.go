package document_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanvigunjal/Multimodal-RAG/features/document"
	"github.com/tanvigunjal/Multimodal-RAG/internal/config"
	"github.com/tanvigunjal/Multimodal-RAG/internal/jobs"
	"github.com/tanvigunjal/Multimodal-RAG/internal/worker"
)

// MockRepo for Service tests
type MockRepo struct {
	document.Repository
	existing map[string]bool
	saved    []*document.Document
}

func (m *MockRepo) Save(ctx context.Context, doc *document.Document) error {
	doc.ID = "d1"
	m.saved = append(m.saved, doc)
	return nil
}

func (m *MockRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	return m.existing[hash], nil
}

// MockPublisher for Service tests
type MockPublisher struct {
	topics   []string
	payloads [][]byte
	err      error
}

func (m *MockPublisher) Publish(topic string, body []byte) error {
	if m.err != nil {
		return m.err
	}
	m.topics = append(m.topics, topic)
	m.payloads = append(m.payloads, body)
	return nil
}

func newService(t *testing.T, repo *MockRepo, pub *MockPublisher) (*document.Service, *jobs.Store) {
	t.Helper()
	store := jobs.NewStore(time.Minute)
	return document.NewService(repo, pub, store, t.TempDir()), store
}

func TestAccept_QueuesIngestTask(t *testing.T) {
	repo := &MockRepo{}
	pub := &MockPublisher{}
	svc, store := newService(t, repo, pub)

	result, err := svc.Accept(context.Background(), "report.pdf", strings.NewReader("%PDF-1.4 content"))
	require.NoError(t, err)
	assert.Equal(t, document.StatusQueued, result.Status)
	assert.Equal(t, "report.pdf", result.FileName)
	assert.Equal(t, "d1", result.DocumentID)

	require.Len(t, pub.topics, 1)
	assert.Equal(t, config.TopicIngestTask, pub.topics[0])

	var payload worker.IngestTaskPayload
	require.NoError(t, json.Unmarshal(pub.payloads[0], &payload))
	assert.Equal(t, result.JobID, payload.JobID)
	assert.Equal(t, "d1", payload.DocumentID)
	assert.Contains(t, payload.FilePath, "report.pdf")

	job, ok := store.Get(result.JobID)
	require.True(t, ok)
	assert.Equal(t, jobs.StateQueued, job.State)
}

func TestAccept_DuplicateHashSkipsQueue(t *testing.T) {
	content := "%PDF-1.4 same content"
	repo := &MockRepo{existing: map[string]bool{}}
	pub := &MockPublisher{}
	svc, store := newService(t, repo, pub)

	// First upload registers the hash.
	first, err := svc.Accept(context.Background(), "a.pdf", strings.NewReader(content))
	require.NoError(t, err)
	repo.existing[repo.saved[0].ContentHash] = true

	second, err := svc.Accept(context.Background(), "copy.pdf", strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, document.StatusDuplicate, second.Status)
	assert.NotEqual(t, first.JobID, second.JobID)

	// Only the first upload was queued.
	assert.Len(t, pub.topics, 1)

	job, ok := store.Get(second.JobID)
	require.True(t, ok)
	assert.Equal(t, jobs.StateDuplicate, job.State)
}

func TestAccept_RejectsUnsupportedType(t *testing.T) {
	svc, _ := newService(t, &MockRepo{}, &MockPublisher{})
	_, err := svc.Accept(context.Background(), "malware.exe", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestAccept_PublishFailureMarksJobFailed(t *testing.T) {
	pub := &MockPublisher{err: assert.AnError}
	svc, store := newService(t, &MockRepo{}, pub)

	_, err := svc.Accept(context.Background(), "a.pdf", strings.NewReader("content"))
	require.Error(t, err)

	failed := 0
	for _, j := range store.List() {
		if j.State == jobs.StateFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestAllowedExtension(t *testing.T) {
	assert.True(t, document.AllowedExtension("a.pdf"))
	assert.True(t, document.AllowedExtension("A.PDF"))
	assert.True(t, document.AllowedExtension("notes.md"))
	assert.True(t, document.AllowedExtension("doc.docx"))
	assert.True(t, document.AllowedExtension("plain.txt"))
	assert.False(t, document.AllowedExtension("img.png"))
	assert.False(t, document.AllowedExtension("archive.zip"))
	assert.False(t, document.AllowedExtension("noext"))
}
