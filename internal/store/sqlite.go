package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nyseclock/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ TransitionStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	at_ms       INTEGER NOT NULL,
	from_status TEXT    NOT NULL,
	to_status   TEXT    NOT NULL,
	reason      TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transitions_at ON transitions(at_ms);
`

// SQLiteStore implements TransitionStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creates the
// journal schema and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serialises
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTransition inserts tr into the journal and sets tr.ID.
func (s *SQLiteStore) SaveTransition(ctx context.Context, tr *domain.Transition) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transitions (at_ms, from_status, to_status, reason) VALUES (?, ?, ?, ?)`,
		tr.At.UnixMilli(), string(tr.From), string(tr.To), tr.Reason)
	if err != nil {
		return fmt.Errorf("inserting transition: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tr.ID = id
	return nil
}

// ListTransitions returns up to limit transitions, newest first. A limit of
// zero or less returns all of them.
func (s *SQLiteStore) ListTransitions(ctx context.Context, limit int) ([]domain.Transition, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at_ms, from_status, to_status, reason FROM transitions ORDER BY at_ms DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transition
	for rows.Next() {
		var (
			tr       domain.Transition
			atMs     int64
			from, to string
		)
		if err := rows.Scan(&tr.ID, &atMs, &from, &to, &tr.Reason); err != nil {
			return nil, err
		}
		tr.At = time.UnixMilli(atMs).UTC()
		tr.From = domain.Status(from)
		tr.To = domain.Status(to)
		out = append(out, tr)
	}
	return out, rows.Err()
}
