package document_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/tanvigunjal/Multimodal-RAG/features/document"
)

func TestPostgresRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)
	now := time.Now()

	doc := &document.Document{
		FileName:    "report.pdf",
		FilePath:    "/data/uploads/abcd1234/report.pdf",
		ContentHash: "hash",
		SizeBytes:   2048,
		Status:      document.StatusQueued,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO documents (file_name, file_path, content_hash, size_bytes, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`)).
		WithArgs(doc.FileName, doc.FilePath, doc.ContentHash, doc.SizeBytes, doc.Status).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("d1", now, now))

	err = repo.Save(context.Background(), doc)
	assert.NoError(t, err)
	assert.Equal(t, "d1", doc.ID)
}

func TestPostgresRepo_ExistsByHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	t.Run("Exists", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM documents WHERE content_hash = $1 AND status != 'failed')")).
			WithArgs("hash123").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ExistsByHash(context.Background(), "hash123")
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("NotExists", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM documents WHERE content_hash = $1 AND status != 'failed')")).
			WithArgs("other").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.ExistsByHash(context.Background(), "other")
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestPostgresRepo_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET status = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs("completed", "d1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateStatus(context.Background(), "d1", "completed"))
}

func TestPostgresRepo_SetChunkCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET chunk_count = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(14, "d1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SetChunkCount(context.Background(), "d1", 14))
}

func TestPostgresRepo_RecordFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ingest_failures (document_id, reason) VALUES ($1, $2)")).
		WithArgs("d1", "FAILED_NO_ELEMENTS").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.RecordFailure(context.Background(), "d1", "FAILED_NO_ELEMENTS"))
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "file_name", "size_bytes", "status", "chunk_count", "created_at", "updated_at"}).
		AddRow("d1", "a.pdf", int64(100), "completed", 5, now, now).
		AddRow("d2", "b.pdf", int64(200), "queued", 0, now, now)
	mock.ExpectQuery("SELECT id, file_name, size_bytes, status, chunk_count, created_at, updated_at").
		WillReturnRows(rows)

	docs, err := repo.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, "a.pdf", docs[0].FileName)
	assert.Equal(t, 5, docs[0].ChunkCount)
}

func TestPostgresRepo_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	rows := sqlmock.NewRows([]string{"count", "completed", "failed", "duplicate", "in_progress", "chunks"}).
		AddRow(10, 6, 2, 1, 1, 120)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	stats, err := repo.Stats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 6, stats.Completed)
	assert.Equal(t, 120, stats.TotalChunks)
}
