package document

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tanvigunjal/Multimodal-RAG/internal/config"
	"github.com/tanvigunjal/Multimodal-RAG/internal/jobs"
	"github.com/tanvigunjal/Multimodal-RAG/internal/middleware"
	"github.com/tanvigunjal/Multimodal-RAG/internal/worker"
)

// Document statuses mirrored in the registry.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusDuplicate  = "duplicate"
)

type Document struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"-"`
	ContentHash string    `json:"-"`
	SizeBytes   int64     `json:"sizeBytes"`
	Status      string    `json:"status"`
	ChunkCount  int       `json:"chunkCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Stats aggregates the registry for the stats endpoint.
type Stats struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	Failed      int `json:"failed"`
	Duplicate   int `json:"duplicate"`
	InProgress  int `json:"inProgress"`
	TotalChunks int `json:"totalChunks"`
}

type Repository interface {
	Save(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context) ([]Document, error)
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetChunkCount(ctx context.Context, id string, chunks int) error
	RecordFailure(ctx context.Context, id, reason string) error
	Stats(ctx context.Context) (*Stats, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

// Service accepts uploaded files: it persists each one under the upload
// dir, registers it, creates a tracking job, and queues an ingest task.
type Service struct {
	repo      Repository
	pub       EventPublisher
	jobStore  *jobs.Store
	uploadDir string
}

func NewService(repo Repository, pub EventPublisher, jobStore *jobs.Store, uploadDir string) *Service {
	return &Service{repo: repo, pub: pub, jobStore: jobStore, uploadDir: uploadDir}
}

// UploadResult ties one uploaded file to its tracking job. Files rejected
// in a multi-file upload carry a failed status and the reason instead of a
// job, so earlier files in the same request stay queued.
type UploadResult struct {
	JobID      string `json:"jobId,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
	FileName   string `json:"fileName"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// AllowedExtension reports whether the file type is accepted for
// ingestion.
func AllowedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt", ".md", ".docx":
		return true
	}
	return false
}

// Accept stores the file content, registers the document, and publishes
// the ingest task. Duplicate content (by hash) is registered as duplicate
// without queueing.
func (s *Service) Accept(ctx context.Context, fileName string, content io.Reader) (*UploadResult, error) {
	if !AllowedExtension(fileName) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(fileName))
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(data))

	path, err := s.persist(fileName, hash, data)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		FileName:    filepath.Base(fileName),
		FilePath:    path,
		ContentHash: hash,
		SizeBytes:   int64(len(data)),
		Status:      StatusQueued,
	}

	exists, err := s.repo.ExistsByHash(ctx, hash)
	if err != nil {
		slog.WarnContext(ctx, "duplicate hash check failed, proceeding", "file", fileName, "error", err)
	}
	if exists {
		doc.Status = StatusDuplicate
		if err := s.repo.Save(ctx, doc); err != nil {
			return nil, err
		}
		job := s.jobStore.Create(uuid.New().String(), doc.FileName)
		s.jobStore.Finish(job.ID, jobs.StateDuplicate, "", 0)
		return &UploadResult{JobID: job.ID, DocumentID: doc.ID, FileName: doc.FileName, Status: StatusDuplicate}, nil
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}

	job := s.jobStore.Create(uuid.New().String(), doc.FileName)

	payload, _ := json.Marshal(worker.IngestTaskPayload{
		JobID:         job.ID,
		DocumentID:    doc.ID,
		FilePath:      path,
		FileName:      doc.FileName,
		CorrelationID: middleware.GetCorrelationID(ctx),
	})
	if err := s.pub.Publish(config.TopicIngestTask, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish ingest task", "file", doc.FileName, "error", err)
		s.jobStore.Finish(job.ID, jobs.StateFailed, "failed to queue ingest task", 0)
		return nil, fmt.Errorf("queueing ingest task: %w", err)
	}
	slog.InfoContext(ctx, "published ingest task", "file", doc.FileName, "job_id", job.ID)

	return &UploadResult{JobID: job.ID, DocumentID: doc.ID, FileName: doc.FileName, Status: StatusQueued}, nil
}

// persist writes the content under uploadDir/<hash-prefix>/<name> so
// re-uploads of the same content land in the same place.
func (s *Service) persist(fileName, hash string, data []byte) (string, error) {
	dir := filepath.Join(s.uploadDir, hash[:8])
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(fileName))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return path, nil
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
