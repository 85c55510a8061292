package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesNodesTable(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Query(`PRAGMA table_info(nodes)`)
	require.NoError(t, err)
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk))
		columns = append(columns, name)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []string{
		"id", "name", "type", "description", "properties",
		"create_time", "update_time", "create_by", "update_by",
		"deleted", "version",
	}, columns)
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{"idx_nodes_name_active", "idx_nodes_type", "idx_nodes_create_time"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_NameUniqueOnlyAmongLiveRows(t *testing.T) {
	db := openTestDB(t)

	insert := `INSERT INTO nodes (id, name, type, create_time, update_time, create_by, update_by, deleted)
		VALUES (?, 'dup', 't', 'x', 'x', 'op', 'op', ?)`

	_, err := db.Exec(insert, 1, 0)
	require.NoError(t, err)

	_, err = db.Exec(insert, 2, 0)
	require.Error(t, err, "second live row with the same name must be rejected")
	assert.Contains(t, err.Error(), "UNIQUE")

	_, err = db.Exec(`UPDATE nodes SET deleted = 1 WHERE id = 1`)
	require.NoError(t, err)

	_, err = db.Exec(insert, 3, 0)
	assert.NoError(t, err, "name of a soft-deleted row is reusable")
}

func TestMigrate_CheckConstraints(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO nodes (id, name, type, create_time, update_time, create_by, update_by, deleted)
		VALUES (1, 'n', 't', 'x', 'x', 'op', 'op', 2)`)
	assert.Error(t, err, "deleted must be 0 or 1")

	_, err = db.Exec(`INSERT INTO nodes (id, name, type, create_time, update_time, create_by, update_by, version)
		VALUES (2, 'm', 't', 'x', 'x', 'op', 'op', -1)`)
	assert.Error(t, err, "version cannot be negative")
}

func TestMigrate_WALModeRequested(t *testing.T) {
	db := openTestDB(t)

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	// In-memory databases always report "memory".
	assert.Equal(t, "memory", mode)
}

func TestOpenDB_FileDatabaseUsesWAL(t *testing.T) {
	path := t.TempDir() + "/nested/nodes.db"
	db, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, busyTimeoutMs, timeout)
}
