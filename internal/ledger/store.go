package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"podcastdl/internal/download"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one recorded invocation of the downloader.
type Run struct {
	ID           string
	FeedURL      string
	PodcastTitle string
	OutputDir    string
	Downloaded   int
	Skipped      int
	Failed       int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// EpisodeRecord is one episode outcome within a recorded run.
type EpisodeRecord struct {
	Position int
	Title    string
	Status   string
	Detail   string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) ensureSchema(ctx context.Context) error {
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_info LIMIT 1").Scan(&version)
	switch {
	case err == nil && version == schemaVersion:
		return nil
	case err == nil || errors.Is(err, sql.ErrNoRows):
		// Wrong or missing version: rebuild.
		if _, err := s.db.ExecContext(ctx, dropSQL); err != nil {
			return fmt.Errorf("drop outdated schema: %w", err)
		}
	default:
		// schema_info does not exist yet; fresh database.
	}

	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_info (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// RecordRun persists a run and its per-episode outcomes atomically.
func (s *Store) RecordRun(ctx context.Context, run Run, outcomes []download.Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, feed_url, podcast_title, output_dir,
            downloaded, skipped, failed, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.FeedURL,
		run.PodcastTitle,
		run.OutputDir,
		run.Downloaded,
		run.Skipped,
		run.Failed,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, outcome := range outcomes {
		detail := outcome.Reason
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_episodes (run_id, position, title, status, detail)
             VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, outcome.Episode.Title, string(outcome.Status), detail,
		)
		if err != nil {
			return fmt.Errorf("insert run episode %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first. Limit 0 means 20.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, feed_url, podcast_title, output_dir,
                downloaded, skipped, failed, started_at, finished_at
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt string
		if err := rows.Scan(
			&run.ID, &run.FeedURL, &run.PodcastTitle, &run.OutputDir,
			&run.Downloaded, &run.Skipped, &run.Failed, &startedAt, &finishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunEpisodes returns the per-episode records of a run in feed order.
func (s *Store) RunEpisodes(ctx context.Context, runID string) ([]EpisodeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, title, status, detail
         FROM run_episodes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run episodes: %w", err)
	}
	defer rows.Close()

	var records []EpisodeRecord
	for rows.Next() {
		var record EpisodeRecord
		if err := rows.Scan(&record.Position, &record.Title, &record.Status, &record.Detail); err != nil {
			return nil, fmt.Errorf("scan run episode: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run episodes: %w", err)
	}
	return records, nil
}
