// Package store is the data access layer for processed documents and their
// chunks. One Store wraps one SQLite database opened through dbopen.
package store

import "database/sql"

// Store wraps the pipeline database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
