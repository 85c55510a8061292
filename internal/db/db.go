package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// busyTimeoutMs is how long a connection waits on a locked database before
// the driver reports SQLITE_BUSY. Concurrent writers queue behind each other
// instead of failing outright.
const busyTimeoutMs = 5000

// OpenDB opens a SQLite database at the given path.
// If path is ":memory:", uses an in-memory database pinned to a single
// connection (every pooled connection would otherwise see its own database).
// File databases use WAL mode. Runs migrations automatically.
func OpenDB(path string) (*sql.DB, error) {
	memory := path == ":memory:"
	if !memory {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, busyTimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
