package document

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, doc *Document) error {
	query := `INSERT INTO documents (file_name, file_path, content_hash, size_bytes, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		doc.FileName, doc.FilePath, doc.ContentHash, doc.SizeBytes, doc.Status,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Document, error) {
	doc := &Document{}
	query := `SELECT id, file_name, file_path, content_hash, size_bytes, status, chunk_count, created_at, updated_at
		FROM documents WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.FileName, &doc.FilePath, &doc.ContentHash, &doc.SizeBytes,
		&doc.Status, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT id, file_name, size_bytes, status, chunk_count, created_at, updated_at
		FROM documents ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.FileName, &d.SizeBytes, &d.Status, &d.ChunkCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *PostgresRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM documents WHERE content_hash = $1 AND status != 'failed')`
	err := r.db.QueryRowContext(ctx, query, hash).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE documents SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *PostgresRepo) SetChunkCount(ctx context.Context, id string, chunks int) error {
	query := `UPDATE documents SET chunk_count = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, chunks, id)
	return err
}

func (r *PostgresRepo) RecordFailure(ctx context.Context, id, reason string) error {
	query := `INSERT INTO ingest_failures (document_id, reason) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, id, reason)
	return err
}

func (r *PostgresRepo) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	query := `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'completed'),
		COUNT(*) FILTER (WHERE status = 'failed'),
		COUNT(*) FILTER (WHERE status = 'duplicate'),
		COUNT(*) FILTER (WHERE status IN ('queued', 'processing')),
		COALESCE(SUM(chunk_count), 0)
		FROM documents`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.Total, &stats.Completed, &stats.Failed, &stats.Duplicate, &stats.InProgress, &stats.TotalChunks,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
