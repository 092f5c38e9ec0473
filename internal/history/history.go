// Package history persists clock events to a local SQLite database so
// the status page can show what the clock did while nobody watched.
// The clock value itself is never persisted: time restarts at 00:00 on
// every boot by design.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sweeney/segclock/internal/clock"
)

const currentVersion = 1

// Store is an append-only clock event log.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		ts          TEXT NOT NULL,
		type        TEXT NOT NULL,
		clock_time  TEXT NOT NULL,
		alarm_time  TEXT NOT NULL,
		armed       INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// Entry is one recorded clock event.
type Entry struct {
	ID        int64
	Timestamp time.Time
	Type      string
	Time      string // HH:MM at the moment of the event
	Alarm     string
	Armed     bool
}

// Record appends a clock event observed at ts.
func (s *Store) Record(ts time.Time, ev clock.Event) error {
	armed := 0
	if ev.Armed {
		armed = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO events (ts, type, clock_time, alarm_time, armed) VALUES (?, ?, ?, ?, ?)`,
		ts.UTC().Format(time.RFC3339), string(ev.Type), ev.Time.String(), ev.Alarm.String(), armed,
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, ts, type, clock_time, alarm_time, armed
		 FROM events ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		var armed int
		if err := rows.Scan(&e.ID, &ts, &e.Type, &e.Time, &e.Alarm, &armed); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339, ts)
		e.Armed = armed != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByType returns how many events of each type are recorded.
func (s *Store) CountByType() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT type, COUNT(*) FROM events GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}
