package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"gridtrace/internal/config"
)

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database under the configured state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas below are per connection.
	db.SetMaxOpenConns(1)

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

	store := &Store{db: db, path: dbPath}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a new running scan.
func (s *Store) Begin(ctx context.Context, id, sourcePath, strategy string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("run id is required")
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, source_path, status, strategy, started_at) VALUES (?, ?, ?, ?, ?)`,
		id,
		sourcePath,
		StatusRunning,
		strategy,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.Get(ctx, id)
}

// Complete marks a run completed and stores its reaction rows atomically.
func (s *Store) Complete(ctx context.Context, id string, outcome Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE runs
         SET status = ?, frames = ?, matched_frames = ?, trials = ?, error_message = NULL, finished_at = ?
         WHERE id = ?`,
		StatusCompleted,
		outcome.Frames,
		outcome.MatchedFrames,
		len(outcome.Reactions),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if err := expectOneRow(res, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reactions WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("clear reactions: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO reactions (
            run_id, trial, start_frame, end_frame, init_dur, total_dur,
            first_x, first_y, final_x, final_y, clicks
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare reaction insert: %w", err)
	}
	defer stmt.Close()
	for _, row := range outcome.Reactions {
		if _, err := stmt.ExecContext(ctx,
			id, row.Trial, row.Start, row.End, row.InitDur, row.TotalDur,
			row.FirstX, row.FirstY, row.FinalX, row.FinalY, row.Clicks,
		); err != nil {
			return fmt.Errorf("insert reaction for trial %d: %w", row.Trial, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// Fail marks a run as failed or needing review.
func (s *Store) Fail(ctx context.Context, id string, status Status, frames int, message string) error {
	if status != StatusFailed && status != StatusReview {
		return fmt.Errorf("fail run: unexpected status %q", status)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, frames = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status,
		frames,
		nullableString(message),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return expectOneRow(res, id)
}

// Get fetches a run by identifier. A missing run yields nil without error.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// FindByPrefix resolves an abbreviated run id. It fails when the prefix is ambiguous.
func (s *Store) FindByPrefix(ctx context.Context, prefix string) (*Run, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, errors.New("run id prefix is required")
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id LIKE ? ORDER BY started_at LIMIT 2`, stripLikeWildcards(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, nil
	case 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", prefix)
	}
}

// List returns the most recent runs, newest first. A limit <= 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Reactions returns the stored trial rows of a run in trial order.
func (s *Store) Reactions(ctx context.Context, runID string) ([]ReactionRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT trial, start_frame, end_frame, init_dur, total_dur,
            first_x, first_y, final_x, final_y, clicks
        FROM reactions WHERE run_id = ? ORDER BY trial`, runID)
	if err != nil {
		return nil, fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	var out []ReactionRow
	for rows.Next() {
		var r ReactionRow
		if err := rows.Scan(&r.Trial, &r.Start, &r.End, &r.InitDur, &r.TotalDur,
			&r.FirstX, &r.FirstY, &r.FinalX, &r.FinalY, &r.Clicks); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Remove deletes a run and its reaction rows.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// MarkAbandoned fails runs left in the running state by an interrupted process.
func (s *Store) MarkAbandoned(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE status = ?`,
		StatusFailed,
		"abandoned: process exited before the run finished",
		formatTime(time.Now()),
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned runs: %w", err)
	}
	return res.RowsAffected()
}
