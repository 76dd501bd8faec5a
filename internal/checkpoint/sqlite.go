package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

// SQLiteStore implements Store using SQLite. Records are stored as JSON
// alongside the step position, one row per session id.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint store: open: %w", err)
	}

	// Enable WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint store: wal: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			session_id TEXT PRIMARY KEY,
			position   TEXT NOT NULL,
			record     TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("checkpoint store: migrate: %w", err)
	}
	return nil
}

// Put saves or replaces the checkpoint for a session.
func (s *SQLiteStore) Put(ctx context.Context, sessionID string, cp Checkpoint) error {
	record, err := json.Marshal(cp.Record)
	if err != nil {
		return fmt.Errorf("checkpoint store: marshal record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (session_id, position, record, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			position=excluded.position, record=excluded.record, updated_at=excluded.updated_at
	`, sessionID, cp.Position, string(record), cp.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("checkpoint store: put: %w", err)
	}
	return nil
}

// Get retrieves the checkpoint for a session.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (Checkpoint, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT position, record, updated_at FROM checkpoints WHERE session_id = ?`, sessionID)

	var cp Checkpoint
	var record, updatedAt string
	if err := row.Scan(&cp.Position, &record, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("checkpoint store: get: %w", err)
	}

	var rec ticket.Record
	if err := json.Unmarshal([]byte(record), &rec); err != nil {
		return Checkpoint{}, false, fmt.Errorf("checkpoint store: unmarshal record: %w", err)
	}
	cp.Record = rec
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		cp.UpdatedAt = t
	}
	return cp, true, nil
}

// Delete removes a session's checkpoint.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM checkpoints WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("checkpoint store: delete: %w", err)
	}
	return nil
}

// Prune removes checkpoints not updated since the cutoff. Retention is the
// operator's call; nothing prunes automatically.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM checkpoints WHERE updated_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("checkpoint store: prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
