// Package database is the SQLite store behind the log sink. Price data is
// deliberately not persisted here; the cache is the only price store.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"time"

	sqlite "modernc.org/sqlite"
)

//go:embed migrations
var migrationsDir embed.FS

type Database struct {
	logger *slog.Logger
	read   *sql.DB
	write  *sql.DB
	path   string
}

const initSQL = `
	PRAGMA journal_mode = WAL;
	PRAGMA synchronous = NORMAL;
	PRAGMA temp_store = MEMORY;
	PRAGMA busy_timeout = 5000;
	PRAGMA foreign_keys = ON;
	PRAGMA trusted_schema = OFF;
`

// New opens the database with a concurrent read pool and a single writer.
func New(ctx context.Context, path string) (*Database, error) {
	sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
		_, err := conn.ExecContext(ctx, initSQL, nil)
		return err
	})

	read, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error when opening database (read): %w", err)
	}
	read.SetMaxOpenConns(10)
	read.SetConnMaxIdleTime(time.Minute)

	write, err := sql.Open("sqlite", path)
	if err != nil {
		read.Close()
		return nil, fmt.Errorf("error when opening database (write): %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetConnMaxIdleTime(time.Minute)

	d := &Database{
		logger: slog.Default().With(slog.String("module", "database")),
		read:   read,
		write:  write,
		path:   path,
	}

	if err := d.migrate(ctx); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return d, nil
}

func (d *Database) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *Database) Close() {
	d.read.Close()
	d.write.Close()
}

func (d *Database) migrate(ctx context.Context) error {
	var currVer int
	if err := d.read.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currVer); err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	files, err := migrationsDir.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, f := range files {
		if !f.IsDir() && filepath.Ext(f.Name()) == ".sql" {
			sqlFiles = append(sqlFiles, f.Name())
		}
	}
	slices.Sort(sqlFiles)

	re := regexp.MustCompile(`^(\d+)[-_]`)
	for _, name := range sqlFiles {
		matches := re.FindStringSubmatch(name)
		if len(matches) < 2 {
			return fmt.Errorf("parse version from migration file: %s", name)
		}
		nextVer, err := strconv.Atoi(matches[1])
		if err != nil {
			return fmt.Errorf("convert migration version from file %s: %w", name, err)
		}
		if nextVer <= currVer {
			continue
		}

		d.logger.Debug(fmt.Sprintf("applying migration %d", nextVer))

		data, err := migrationsDir.ReadFile(path.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", name, err)
		}

		tx, err := d.write.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("start transaction for migration %d: %w", nextVer, err)
		}
		if _, err := tx.ExecContext(ctx, string(data)); err != nil {
			if err := tx.Rollback(); err != nil {
				return fmt.Errorf("rollback migration %d: %w", nextVer, err)
			}
			return fmt.Errorf("apply migration %d: %w", nextVer, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d;", nextVer)); err != nil {
			if err := tx.Rollback(); err != nil {
				return fmt.Errorf("rollback migration %d: %w", nextVer, err)
			}
			return fmt.Errorf("update database version for migration %d: %w", nextVer, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", nextVer, err)
		}
	}

	return nil
}
