package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/nodestore/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return db.NewSQLiteUnitOfWork(database)
}

const insertNode = `INSERT INTO nodes (id, name, type, create_time, update_time, create_by, update_by)
	VALUES (?, ?, 'test', 'x', 'x', 'op', 'op')`

// readName reads the name of a node through a fresh read-only transaction.
func readName(uow *db.SQLiteUnitOfWork, id int64) (string, bool) {
	var name string
	var found bool
	_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		row := tx.QueryRowContext(ctx, `SELECT name FROM nodes WHERE id = ?`, id)
		if err := row.Scan(&name); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return name, found
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, insertNode, 1, "committed")
		return err
	})
	require.NoError(t, err)

	name, found := readName(uow, 1)
	assert.True(t, found, "row should exist after commit")
	assert.Equal(t, "committed", name)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, insertNode, 2, "rolled-back")
		if err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	_, found := readName(uow, 2)
	assert.False(t, found, "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, insertNode, 3, "panicked")
			panic("boom")
		})
	})

	_, found := readName(uow, 3)
	assert.False(t, found, "row should not exist after panic rollback")
}
