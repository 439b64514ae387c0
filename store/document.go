package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// InsertDocument records a new processing attempt in status processing.
func (s *Store) InsertDocument(ctx context.Context, doc *Document) error {
	if doc.CreatedAt == 0 {
		doc.CreatedAt = time.Now().UnixMilli()
	}
	if doc.Status == "" {
		doc.Status = StatusProcessing
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO documents (id, name, content_type, status, error,
		chunk_count, link_count, image_count, created_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.ContentType, doc.Status, doc.Error,
		doc.ChunkCount, doc.LinkCount, doc.ImageCount, doc.CreatedAt, doc.ProcessedAt,
	)
	return err
}

// FinishDocument marks a document terminal: completed, empty, or failed.
// errMsg is only meaningful for failed.
func (s *Store) FinishDocument(ctx context.Context, id, status, errMsg string, chunkCount, linkCount, imageCount int) error {
	now := time.Now().UnixMilli()
	_, err := s.DB.ExecContext(ctx,
		`UPDATE documents SET status=?, error=?, chunk_count=?, link_count=?,
		image_count=?, processed_at=?
		WHERE id=?`,
		status, errMsg, chunkCount, linkCount, imageCount, now, id)
	return err
}

// GetDocument retrieves a document by ID, or nil when absent.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, name, content_type, status, error,
		chunk_count, link_count, image_count, created_at, processed_at
		FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// ListDocuments returns documents newest first.
func (s *Store) ListDocuments(ctx context.Context, limit, offset int) ([]*Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, content_type, status, error,
		chunk_count, link_count, image_count, created_at, processed_at
		FROM documents ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Name, &d.ContentType, &d.Status, &d.Error,
			&d.ChunkCount, &d.LinkCount, &d.ImageCount, &d.CreatedAt, &d.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

// CountDocuments returns per-status counts.
func (s *Store) CountDocuments(ctx context.Context) (map[string]int, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM documents GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanDocument(row *sql.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Name, &d.ContentType, &d.Status, &d.Error,
		&d.ChunkCount, &d.LinkCount, &d.ImageCount, &d.CreatedAt, &d.ProcessedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &d, nil
}
