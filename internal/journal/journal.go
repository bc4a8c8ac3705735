// Package journal keeps a SQLite record of progression events for diagnostics.
// Nothing in it is ever read back into a session.
package journal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"

	"github.com/xonecas/hollow/internal/config"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

const currentSchemaVersion = 1

// Journal provides access to the SQLite database.
type Journal struct {
	db *sql.DB
}

// New opens the journal at the default location in the data directory.
func New() (*Journal, error) {
	dir, err := config.EnsureDataDir()
	if err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	return Open(filepath.Join(dir, "journal.db"))
}

// Open opens a journal at the given path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return j, nil
}

// OpenMemory opens an in-memory journal for testing.
func OpenMemory() (*Journal, error) {
	return Open(":memory:")
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	var version int
	err := j.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		// No schema yet.
		if _, err := j.db.Exec(schema); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	if version == currentSchemaVersion {
		return nil
	}

	// Forward-only: the journal is diagnostic, so an old one is simply recreated.
	if version < currentSchemaVersion {
		if _, err := j.db.Exec(`
			DROP TABLE IF EXISTS events;
			DROP TABLE IF EXISTS schema_version;
		`); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		if _, err := j.db.Exec(schema); err != nil {
			return fmt.Errorf("recreate schema: %w", err)
		}
	}

	return nil
}
