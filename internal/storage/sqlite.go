package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SessionRecord is one row of the session index.
type SessionRecord struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at,omitempty"`
	State          string    `json:"state"`
	Turns          int       `json:"turns"`
	TranscriptPath string    `json:"transcript_path,omitempty"`
	PersonaPath    string    `json:"persona_path,omitempty"`
}

// SessionIndex keeps a queryable record of past sessions in SQLite.
// Artifacts themselves live on disk; the index only tracks metadata.
type SessionIndex struct {
	db *sql.DB
}

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	started_at      INTEGER NOT NULL,
	ended_at        INTEGER,
	state           TEXT NOT NULL,
	turns           INTEGER NOT NULL DEFAULT 0,
	transcript_path TEXT,
	persona_path    TEXT
);
`

// OpenSessionIndex opens (and if needed creates) the index database.
func OpenSessionIndex(path string) (*SessionIndex, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session index: %w", err)
	}
	// One writer at a time keeps the pure-Go driver happy.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate session index: %w", err)
	}

	return &SessionIndex{db: db}, nil
}

// RecordStart inserts a new session row in the running state.
func (s *SessionIndex) RecordStart(ctx context.Context, id string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, state) VALUES (?, ?, ?)`,
		id, startedAt.Unix(), "active")
	if err != nil {
		return fmt.Errorf("failed to record session start: %w", err)
	}
	return nil
}

// RecordFinish updates the row with the session's final state and
// artifact paths.
func (s *SessionIndex) RecordFinish(ctx context.Context, rec SessionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, state = ?, turns = ?, transcript_path = ?, persona_path = ? WHERE id = ?`,
		rec.EndedAt.Unix(), rec.State, rec.Turns, rec.TranscriptPath, rec.PersonaPath, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to record session finish: %w", err)
	}
	return nil
}

// List returns all sessions, newest first.
func (s *SessionIndex) List(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(ended_at, 0), state, turns,
		        COALESCE(transcript_path, ''), COALESCE(persona_path, '')
		 FROM sessions ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var (
			rec       SessionRecord
			startedAt int64
			endedAt   int64
		)
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &rec.State, &rec.Turns,
			&rec.TranscriptPath, &rec.PersonaPath); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		rec.StartedAt = time.Unix(startedAt, 0)
		if endedAt > 0 {
			rec.EndedAt = time.Unix(endedAt, 0)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	return records, nil
}

// Close releases the underlying database handle.
func (s *SessionIndex) Close() error {
	return s.db.Close()
}
