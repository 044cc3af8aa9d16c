// Package sqlite persists coordinate systems, feature-table associations and
// mapping declarations in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/coordsys/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const busyTimeoutMs = 5000

// migrateLockTimeout bounds the wait for another process migrating the same file.
var migrateLockTimeout = 10 * time.Second

const lockRetryInterval = 50 * time.Millisecond

// DB owns the SQLite connection pool.
type DB struct {
	conn *sql.DB
}

// NewDB opens (creating if needed) the database at path and applies pending migrations.
// The parent directory is created with 0700 permissions. An existing database file is
// copied to <path>.bak before migrations run. Backup and migrations happen under an
// exclusive lock on <path>.lock shared with other processes.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	unlock, err := lockFile(path + ".lock")
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := os.Stat(path); err == nil {
		if err := backupFile(path, path+".bak"); err != nil {
			return nil, fmt.Errorf("failed to back up database: %w", err)
		}
		log.Debug(log.CatDB, "Backed up database", "path", path+".bak")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		path, busyTimeoutMs)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open database", err, "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to ping database", err, "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	applied, err := runMigrations(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info(log.CatDB, "Opened database", "path", path, "migrations_applied", applied)
	return &DB{conn: conn}, nil
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Connection returns the underlying *sql.DB.
func (d *DB) Connection() *sql.DB {
	return d.conn
}

// CoordSystemRepository returns the repository over this database.
func (d *DB) CoordSystemRepository() *CoordSystemRepository {
	return newCoordSystemRepository(d.conn)
}

// runMigrations applies every embedded up-migration newer than the recorded
// schema version and returns how many ran. Versions are tracked in
// schema_migrations with the same layout golang-migrate uses.
func runMigrations(conn *sql.DB) (int, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations: %w", err)
	}
	defer src.Close()

	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER NOT NULL PRIMARY KEY,
		dirty   INTEGER NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current, dirty, err := schemaVersion(conn)
	if err != nil {
		return 0, err
	}
	if dirty {
		return 0, fmt.Errorf("database schema is dirty at version %d", current)
	}

	applied := 0
	version, err := src.First()
	for err == nil {
		if version > current {
			if err := applyMigration(conn, src, version); err != nil {
				return applied, err
			}
			applied++
		}
		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return applied, fmt.Errorf("failed to list migrations: %w", err)
	}
	return applied, nil
}

func schemaVersion(conn *sql.DB) (uint, bool, error) {
	var version int64
	var dirty bool
	err := conn.QueryRow(`SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return uint(version), dirty, nil
}

func applyMigration(conn *sql.DB, src source.Driver, version uint) error {
	body, identifier, err := src.ReadUp(version)
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}
	script, err := io.ReadAll(body)
	_ = body.Close()
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(string(script)); err != nil {
		log.ErrorErr(log.CatDB, "Migration failed", err, "version", version, "name", identifier)
		return fmt.Errorf("failed to apply migration %d (%s): %w", version, identifier, err)
	}
	if _, err := tx.Exec(`DELETE FROM schema_migrations`); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", version, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, dirty) VALUES (?, 0)`, int64(version)); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", version, err)
	}

	log.Debug(log.CatDB, "Applied migration", "version", version, "name", identifier)
	return nil
}

func backupFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: path is the configured database path
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) //nolint:gosec // G304: derived from database path
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func lockFile(path string) (unlock func(), err error) {
	lock := flock.New(path)
	ctx, cancel := context.WithTimeout(context.Background(), migrateLockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil || !locked {
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("database is locked by another process (%s): %w", path, err)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			log.ErrorErr(log.CatDB, "Failed to release database lock", err, "path", path)
		}
	}, nil
}
