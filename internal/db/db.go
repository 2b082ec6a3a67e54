package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// SQLiteStore is the local, file-backed Store.
type SQLiteStore struct {
	*base
}

// compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// Open opens (or creates) the SQLite database at the given path.
func Open(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set PRAGMAs explicitly (modernc driver doesn't support DSN query params)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	b := &base{db: sqlDB, bind: func(q string) string { return q }}
	if err := b.migrate(sqliteMigrations); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{base: b}, nil
}

var sqliteMigrations = []migration{
	{1, []string{
		`CREATE TABLE IF NOT EXISTS presets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			transform_count INTEGER NOT NULL,
			iterations INTEGER NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			output_mode INTEGER NOT NULL DEFAULT 0,
			point_count INTEGER NOT NULL,
			transforms TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_presets_created ON presets(created_at)`,
		`CREATE TABLE IF NOT EXISTS tags (
			preset_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (preset_id, tag),
			FOREIGN KEY (preset_id) REFERENCES presets(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag)`,
	}},
}

type migration struct {
	version int
	sqls    []string
}

// base holds the SQL shared by both backends. bind rewrites '?' placeholders
// for drivers that need another style.
type base struct {
	db   *sql.DB
	bind func(string) string
}

func (d *base) Close() error {
	return d.db.Close()
}

func (d *base) QueryRow(query string, args ...interface{}) *sql.Row {
	return d.db.QueryRow(d.bind(query), args...)
}

func (d *base) exec(query string, args ...interface{}) (sql.Result, error) {
	return d.db.Exec(d.bind(query), args...)
}

func (d *base) query(query string, args ...interface{}) (*sql.Rows, error) {
	return d.db.Query(d.bind(query), args...)
}

func (d *base) getSchemaVersion() int {
	var version int
	err := d.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

func (d *base) migrate(migrations []migration) error {
	// Ensure schema_version table exists first
	_, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion := d.getSchemaVersion()

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		tx, err := d.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
		}

		for _, s := range m.sqls {
			if _, err := tx.Exec(s); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
		}

		_, err = tx.Exec(d.bind("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)"),
			m.version, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
