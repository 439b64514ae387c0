package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pikahelper/docmill/dbopen"
)

// InsertChunks stores a batch of chunks in a single transaction, retried on
// lock contention since batch workers share the database. Chunk ids are
// {doc}_chunk_{index}, so re-processing a document replaces its prior
// chunks instead of duplicating them.
func (s *Store) InsertChunks(ctx context.Context, chunks []*Chunk) error {
	now := time.Now().UnixMilli()
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO chunks (id, document_id, chunk_index, content,
			start_offset, end_offset, metadata_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()

		for _, c := range chunks {
			if c.CreatedAt == 0 {
				c.CreatedAt = now
			}
			if c.MetadataJSON == "" {
				c.MetadataJSON = "{}"
			}
			_, err := stmt.ExecContext(ctx,
				c.ID, c.DocumentID, c.ChunkIndex, c.Content,
				c.StartOffset, c.EndOffset, c.MetadataJSON, c.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert chunk %d: %w", c.ChunkIndex, err)
			}
		}
		return nil
	})
}

// ListChunks returns a document's chunks in segment order.
func (s *Store) ListChunks(ctx context.Context, documentID string) ([]*Chunk, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, document_id, chunk_index, content,
		start_offset, end_offset, metadata_json, created_at
		FROM chunks WHERE document_id = ? ORDER BY chunk_index ASC`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Content,
			&c.StartOffset, &c.EndOffset, &c.MetadataJSON, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

// CountChunks returns the number of chunks stored for a document.
func (s *Store) CountChunks(ctx context.Context, documentID string) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE document_id = ?`, documentID).Scan(&n)
	return n, err
}
