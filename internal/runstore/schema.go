package runstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
)

// Migrations are applied in file name order. The database's user_version
// holds the number already applied.
//
//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrSchemaMismatch indicates a database written by a newer gridtrace.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func migrations() ([]string, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// migrate brings the database up to the latest run-history layout.
func (s *Store) migrate(ctx context.Context) error {
	names, err := migrations()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(names) {
		return fmt.Errorf("%w: database has version %d, this build knows %d (delete %s to reset run history)",
			ErrSchemaMismatch, version, len(names), s.path)
	}

	for i := version; i < len(names); i++ {
		if err := s.apply(ctx, names[i], i+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) apply(ctx context.Context, name string, version int) error {
	ddl, err := migrationFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", path.Base(name), err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(ddl)); err != nil {
		return fmt.Errorf("apply migration %s: %w", path.Base(name), err)
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("record schema version %d: %w", version, err)
	}
	return tx.Commit()
}
