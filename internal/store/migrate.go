package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

//go:embed migrations
var migrationFiles embed.FS

// Migrate applies the embedded migrations for the store's dialect, in
// file-name order, skipping the ones already recorded.
func (s *Store) Migrate(ctx context.Context) error {
	dir := "migrations/sqlite"
	if s.driver == DriverPostgres {
		dir = "migrations/postgres"
	}
	sub, err := fs.Sub(migrationFiles, dir)
	if err != nil {
		return err
	}
	return s.migrateFS(ctx, sub)
}

func (s *Store) migrateFS(ctx context.Context, fsys fs.FS) error {
	_, err := s.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		applied, err := s.isApplied(ctx, file)
		if err != nil {
			return err
		}
		if applied {
			slog.Debug("Skipping already applied migration", "file", file)
			continue
		}

		slog.Info("Applying migration", "file", file)
		content, err := fs.ReadFile(fsys, path.Clean(file))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		err = s.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", file, err)
			}
			_, err := tx.ExecContext(ctx, s.q(`INSERT INTO schema_migrations (version) VALUES (?)`), file)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) isApplied(ctx context.Context, version string) (bool, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`), version).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
