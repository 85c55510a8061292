package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent, so it is
// safe to call on each startup.
func Migrate(db *sql.DB) error {
	if err := dropLegacyNameIndex(db); err != nil {
		return fmt.Errorf("dropping legacy name index: %w", err)
	}
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// dropLegacyNameIndex removes a table-wide unique index on nodes(name) left
// behind by older schemas. That index blocks reusing the name of a
// soft-deleted node; idx_nodes_name_active replaces it.
func dropLegacyNameIndex(db *sql.DB) error {
	ctx := context.Background()

	var createSQL sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'index' AND name = 'idx_nodes_name'`).Scan(&createSQL)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading idx_nodes_name definition: %w", err)
	}
	if strings.Contains(strings.ToLower(createSQL.String), "where") {
		return nil
	}

	if _, err := db.ExecContext(ctx, `DROP INDEX idx_nodes_name`); err != nil {
		return fmt.Errorf("dropping idx_nodes_name: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS nodes (
		id          INTEGER PRIMARY KEY,
		name        TEXT NOT NULL,
		type        TEXT NOT NULL,
		description TEXT,
		properties  TEXT,
		create_time TEXT NOT NULL,
		update_time TEXT NOT NULL,
		create_by   TEXT NOT NULL,
		update_by   TEXT NOT NULL,
		deleted     INTEGER NOT NULL DEFAULT 0 CHECK(deleted IN (0, 1)),
		version     INTEGER NOT NULL DEFAULT 0 CHECK(version >= 0)
	)`,

	// Names are unique among live rows only, so a soft-deleted name can be reused.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_name_active ON nodes(name) WHERE deleted = 0`,
	`CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type, deleted)`,
	`CREATE INDEX IF NOT EXISTS idx_nodes_create_time ON nodes(create_time)`,
}
