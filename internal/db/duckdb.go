// Package db persists style document snapshots in DuckDB.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Config holds database configuration. An empty DataDir opens an in-memory
// database.
type Config struct {
	DataDir string
	DBName  string
}

// Snapshot is one saved style document.
type Snapshot struct {
	ID        int64     `json:"id" doc:"Snapshot ID"`
	Name      string    `json:"name" doc:"Style name at save time"`
	Size      int       `json:"size" doc:"Document size in bytes"`
	CreatedAt time.Time `json:"createdAt" doc:"When the snapshot was saved"`
	Body      []byte    `json:"-"`
}

// Store saves and loads snapshots.
type Store struct {
	db *sql.DB
}

var schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS snapshot_seq`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		id         BIGINT PRIMARY KEY DEFAULT nextval('snapshot_seq'),
		name       VARCHAR NOT NULL,
		body       VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
}

// Open connects to DuckDB and prepares the snapshot table.
func Open(cfg Config) (*Store, error) {
	dsn := ""
	if cfg.DataDir != "" {
		// Create duckdb subdirectory
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
		}
		name := cfg.DBName
		if name == "" {
			name = "style"
		}
		dsn = filepath.Join(duckdbDir, name+".duckdb")
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	// An in-memory database lives per connection.
	conn.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create snapshot table: %w", err)
		}
	}
	return &Store{db: conn}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores body as a new snapshot.
func (s *Store) Save(ctx context.Context, name string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO snapshots (name, body) VALUES (?, ?)`, name, string(body))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Latest returns the newest snapshot, or nil if none exist.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, body, created_at FROM snapshots ORDER BY id DESC LIMIT 1`)

	var snap Snapshot
	var body string
	if err := row.Scan(&snap.ID, &snap.Name, &body, &snap.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap.Body = []byte(body)
	snap.Size = len(body)
	return &snap, nil
}

// List returns up to limit snapshots, newest first, without their bodies.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, length(body), created_at FROM snapshots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.Size, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
