package calstore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB

	insertEntry *sql.Stmt
	deleteEntry *sql.Stmt
	listEntries *sql.Stmt
}

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id             TEXT PRIMARY KEY,
	summary        TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	start_date     TEXT NOT NULL DEFAULT '',
	start_datetime TEXT NOT NULL DEFAULT '',
	end_date       TEXT NOT NULL DEFAULT '',
	end_datetime   TEXT NOT NULL DEFAULT '',
	timezone       TEXT NOT NULL DEFAULT '',
	reminders      TEXT NOT NULL DEFAULT '[]',
	start_day      TEXT NOT NULL,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_start_day ON entries(start_day);
`

// Open opens (creating if needed) the SQLite calendar store at path, with
// WAL mode and a busy timeout for per-connection settings.
func Open(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		url.PathEscape(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertEntry, err = s.db.Prepare(`
		INSERT INTO entries (id, summary, description, start_date, start_datetime,
			end_date, end_datetime, timezone, reminders, start_day, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.deleteEntry, err = s.db.Prepare(`DELETE FROM entries WHERE id = ?`)
	if err != nil {
		return err
	}

	s.listEntries, err = s.db.Prepare(`
		SELECT id, summary, description, start_date, start_datetime,
			end_date, end_datetime, timezone, reminders
		FROM entries
		WHERE start_day >= ? AND start_day < ?
		ORDER BY start_day, summary
	`)
	return err
}

// List returns entries whose start date falls within [timeMin, timeMax).
func (s *SQLiteStore) List(ctx context.Context, timeMin, timeMax time.Time) ([]Entry, error) {
	rows, err := s.listEntries.QueryContext(ctx,
		timeMin.UTC().Format("2006-01-02"), timeMax.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var tz, reminders string
		if err := rows.Scan(&e.ID, &e.Summary, &e.Description,
			&e.Start.Date, &e.Start.DateTime, &e.End.Date, &e.End.DateTime,
			&tz, &reminders); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if e.Start.DateTime != "" {
			e.Start.TimeZone = tz
		}
		if e.End.DateTime != "" {
			e.End.TimeZone = tz
		}
		if err := json.Unmarshal([]byte(reminders), &e.Reminders); err != nil {
			return nil, fmt.Errorf("decoding reminders for entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Insert stores an entry, assigning it a fresh id, and returns that id.
func (s *SQLiteStore) Insert(ctx context.Context, entry Entry) (string, error) {
	day, err := entry.Start.NormalizedDate()
	if err != nil {
		return "", fmt.Errorf("normalizing entry start: %w", err)
	}

	reminders, err := json.Marshal(entry.Reminders)
	if err != nil {
		return "", fmt.Errorf("encoding reminders: %w", err)
	}

	id := newEntryID()
	tz := entry.Start.TimeZone
	if tz == "" {
		tz = entry.End.TimeZone
	}

	_, err = s.insertEntry.ExecContext(ctx, id, entry.Summary, entry.Description,
		entry.Start.Date, entry.Start.DateTime, entry.End.Date, entry.End.DateTime,
		tz, string(reminders), day.Format("2006-01-02"),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("inserting entry: %w", err)
	}
	return id, nil
}

// Delete removes an entry by id. Deleting an unknown id is an error so a
// failed replace surfaces as a skipped action rather than silently passing.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.deleteEntry.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entry not found: %s", id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func newEntryID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
