package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradePath_TableWideNameIndex simulates a database created by
// an older schema that enforced name uniqueness across all rows, including
// soft-deleted ones. Migrate must keep the data, drop the old index, and
// install the live-rows-only index.
func TestMigrate_UpgradePath_TableWideNameIndex(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	legacy := []string{
		`CREATE TABLE nodes (
			id          INTEGER PRIMARY KEY,
			name        TEXT NOT NULL,
			type        TEXT NOT NULL,
			description TEXT,
			properties  TEXT,
			create_time TEXT NOT NULL,
			update_time TEXT NOT NULL,
			create_by   TEXT NOT NULL,
			update_by   TEXT NOT NULL,
			deleted     INTEGER NOT NULL DEFAULT 0,
			version     INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE UNIQUE INDEX idx_nodes_name ON nodes(name)`,
		`INSERT INTO nodes (id, name, type, create_time, update_time, create_by, update_by, deleted)
			VALUES (1, 'legacy', 'database', 'x', 'x', 'op', 'op', 1)`,
	}
	for _, stmt := range legacy {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	require.NoError(t, Migrate(db))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_nodes_name'`).Scan(&count))
	assert.Equal(t, 0, count, "table-wide name index should be dropped")

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count))
	assert.Equal(t, 1, count, "existing rows survive the upgrade")

	_, err = db.Exec(`INSERT INTO nodes (id, name, type, create_time, update_time, create_by, update_by)
		VALUES (2, 'legacy', 'database', 'x', 'x', 'op', 'op')`)
	assert.NoError(t, err, "a deleted name is reusable after the upgrade")
}

func TestMigrate_KeepsPartialNameIndex(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db))
	_, err = db.Exec(`CREATE UNIQUE INDEX idx_nodes_name ON nodes(name, type) WHERE deleted = 0`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_nodes_name'`).Scan(&count))
	assert.Equal(t, 1, count, "an index already scoped to live rows is left alone")
}
