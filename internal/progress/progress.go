// Package progress is the durable progress store: a small SQLite
// key-value table of per-encounter outcomes. The core state machines do
// not depend on it; the app records through the outcome bridge's sink.
package progress

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tatianab/filebane/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS outcomes (
	encounter_id TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	size_freed   INTEGER NOT NULL,
	recorded_at  TEXT NOT NULL
);
`

// Store persists encounter outcomes across runs.
type Store struct {
	db        *sql.DB
	sessionID string
}

// Open opens (or creates) the progress database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, sessionID: uuid.New().String()}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SessionID returns the id stamped on outcomes recorded by this run.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Record stores one completion. First write wins: an encounter that
// already has a stored outcome keeps it.
func (s *Store) Record(c models.Completion) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO outcomes (encounter_id, session_id, outcome, size_freed, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.EncounterID, s.sessionID, string(c.Outcome), c.SizeFreed,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// Outcome looks up the stored outcome for an encounter id.
func (s *Store) Outcome(encounterID string) (models.Outcome, bool, error) {
	var out string
	err := s.db.QueryRow(
		`SELECT outcome FROM outcomes WHERE encounter_id = ?`, encounterID,
	).Scan(&out)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup outcome: %w", err)
	}
	return models.Outcome(out), true, nil
}

// Totals are the lifetime aggregates shown on the summary screen.
type Totals struct {
	Banished   int
	Skipped    int
	Survived   int
	BytesFreed int64
}

// Totals aggregates everything ever recorded.
func (s *Store) Totals() (Totals, error) {
	rows, err := s.db.Query(`SELECT outcome, size_freed FROM outcomes`)
	if err != nil {
		return Totals{}, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	var t Totals
	for rows.Next() {
		var out string
		var freed int64
		if err := rows.Scan(&out, &freed); err != nil {
			return Totals{}, fmt.Errorf("scan totals: %w", err)
		}
		switch models.Outcome(out) {
		case models.OutcomeBanished:
			t.Banished++
			t.BytesFreed += freed
		case models.OutcomeSkipped:
			t.Skipped++
		case models.OutcomeSurvived:
			t.Survived++
		}
	}
	return t, rows.Err()
}
