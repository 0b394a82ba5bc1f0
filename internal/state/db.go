package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection to the state database.
type DB struct {
	*sql.DB
	path string
}

// DefaultDBPath returns the default database path
// (~/.local/share/workbench/state.db).
func DefaultDBPath() (string, error) {
	// Follow XDG Base Directory spec: use $XDG_DATA_HOME or ~/.local/share
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "workbench", "state.db"), nil
}

// Open opens or creates the state database at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
// If path is empty, uses DefaultDBPath().
func Open(path string) (*DB, error) {
	var err error
	if path == "" {
		path, err = DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// In-memory databases use shared cache mode so multiple connections see
	// the same database; file-based ones use WAL for concurrent reads.
	var dsn string
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared"
	} else {
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Path returns the database file path, or ":memory:" for in-memory databases.
func (db *DB) Path() string {
	return db.path
}
