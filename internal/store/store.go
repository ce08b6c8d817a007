// Package store handles SQLite persistence of the ring log.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout sorts lexicographically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Store wraps SQLite access for the ring log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			hostname TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ring_log (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			at TEXT NOT NULL,
			source TEXT NOT NULL,
			kind TEXT NOT NULL,
			lesson INTEGER NOT NULL,
			description TEXT NOT NULL,
			sound TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ring_log_at ON ring_log(at);`,
		`CREATE INDEX IF NOT EXISTS idx_ring_log_source ON ring_log(source);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// StartRun records a process start.
func (s *Store) StartRun(ctx context.Context, runID string, at time.Time, hostname string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, hostname) VALUES (?, ?, ?)`,
		runID, formatTime(at), hostname)
	return err
}

// InsertEntries stores a batch of log entries in one transaction.
func (s *Store) InsertEntries(ctx context.Context, entries []model.LogEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ring_log (run_id, at, source, kind, lesson, description, sound)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, e := range entries {
		if _, err = stmt.ExecContext(ctx,
			e.RunID,
			formatTime(e.At),
			string(e.Source),
			e.Kind,
			e.Lesson,
			e.Description,
			e.Sound,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListEntries returns log entries oldest first. Filter.Last keeps only
// the most recent entries.
func (s *Store) ListEntries(ctx context.Context, filter model.LogFilter) ([]model.LogEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, string(filter.Source))
	}
	if filter.Since != nil {
		clauses = append(clauses, "at >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	limit := -1
	if filter.Last > 0 {
		limit = filter.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT id, run_id, at, source, kind, lesson, description, sound FROM (
		SELECT * FROM ring_log
		WHERE %s
		ORDER BY at DESC, id DESC
		LIMIT ?
	) ORDER BY at ASC, id ASC`, strings.Join(clauses, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		var at, source string
		if err := rows.Scan(&e.ID, &e.RunID, &at, &source, &e.Kind, &e.Lesson, &e.Description, &e.Sound); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, at)
		if err != nil {
			return nil, err
		}
		e.At = parsed.Local()
		e.Source = model.LogSource(source)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountBySource aggregates entries per local calendar day and source.
func (s *Store) CountBySource(ctx context.Context, since *time.Time) ([]model.SourceCount, error) {
	entries, err := s.ListEntries(ctx, model.LogFilter{Since: since})
	if err != nil {
		return nil, err
	}
	type key struct {
		day    string
		source model.LogSource
	}
	counts := map[key]int{}
	var order []key
	for _, e := range entries {
		k := key{day: e.At.Local().Format("2006-01-02"), source: e.Source}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	result := make([]model.SourceCount, 0, len(order))
	for _, k := range order {
		result = append(result, model.SourceCount{Day: k.day, Source: k.source, Count: counts[k]})
	}
	return result, nil
}

// Prune deletes entries older than before and returns how many went.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ring_log WHERE at < ?`, formatTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
