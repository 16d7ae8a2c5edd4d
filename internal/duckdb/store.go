// Package duckdb stores HGVS results in DuckDB and caches parsed gene
// models on disk.
// Gene models are cached as gob files (fast, pure Go).
// HGVS results are stored in DuckDB (queryable across runs).
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding HGVS results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file, "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS hgvs_results (
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		transcript_id VARCHAR,
		gene_name VARCHAR,
		hgvsc VARCHAR,
		start_pos BIGINT,
		start_region VARCHAR,
		start_offset BIGINT,
		end_pos BIGINT,
		end_region VARCHAR,
		end_offset BIGINT,
		has_end BOOLEAN,
		PRIMARY KEY (chrom, pos, ref, alt, transcript_id)
	)`)
	return err
}
