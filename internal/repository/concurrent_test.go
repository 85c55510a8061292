package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/nodestore/internal/db"
	"github.com/alexanderramin/nodestore/internal/domain"
	"github.com/alexanderramin/nodestore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestConcurrentUpdate_ExactlyOneWinner races writers holding the same
// version of a node. The conditional update lets exactly one through; every
// other writer sees an optimistic lock conflict.
func TestConcurrentUpdate_ExactlyOneWinner(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	repo := NewSQLiteNodeRepo(database)
	ctx := context.Background()

	node := testutil.NewTestNode("contended")
	require.NoError(t, repo.Save(ctx, node, operator))

	const writers = 8
	var wins, conflicts atomic.Int32
	var g errgroup.Group
	for w := 0; w < writers; w++ {
		mine := node.Clone()
		mine.Description = domain.StrPtr(fmt.Sprintf("writer %d", w))
		g.Go(func() error {
			err := repo.Update(ctx, mine, fmt.Sprintf("writer-%d", w))
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrOptimisticLock):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(writers-1), conflicts.Load())

	got, err := repo.FindByID(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

// TestConcurrentSave_SameName checks the live-name index under concurrent
// inserts.
func TestConcurrentSave_SameName(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	repo := NewSQLiteNodeRepo(database)
	ctx := context.Background()

	const writers = 6
	var wins, dups atomic.Int32
	var g errgroup.Group
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			err := repo.Save(ctx, testutil.NewTestNode("singleton"), operator)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrDuplicateKey):
				dups.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(writers-1), dups.Load())
}

func TestConcurrentSave_DistinctNamesUniqueIDs(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	repo := NewSQLiteNodeRepo(database)
	ctx := context.Background()

	const writers = 10
	ids := make([]int64, writers)
	var g errgroup.Group
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			n := testutil.NewTestNode(fmt.Sprintf("svc-%02d", w), testutil.WithType("application"))
			if err := repo.Save(ctx, n, operator); err != nil {
				return err
			}
			ids[w] = n.ID
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int64]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}

	page, err := repo.FindPage(ctx, PageQuery{Page: 1, Size: 5, Type: "application"})
	require.NoError(t, err)
	assert.Equal(t, int64(writers), page.Total)
	assert.Equal(t, int64(2), page.Pages)
}

// TestNodeRepo_WithinUnitOfWork scopes a repository to a transaction. A
// failure after the first write rolls the whole unit back.
func TestNodeRepo_WithinUnitOfWork(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	injected := errors.New("injected failure")

	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: injected}
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := NewSQLiteNodeRepo(tx)
		if err := repo.Save(ctx, testutil.NewTestNode("first-in-tx"), operator); err != nil {
			return err
		}
		return repo.Save(ctx, testutil.NewTestNode("second-in-tx"), operator)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, injected)

	got, err := NewSQLiteNodeRepo(database).FindByName(ctx, "first-in-tx")
	require.NoError(t, err)
	assert.Nil(t, got, "first save rolled back with the unit")

	commit := testutil.NewTestUoW(database)
	err = commit.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := NewSQLiteNodeRepo(tx)
		if err := repo.Save(ctx, testutil.NewTestNode("kept-a"), operator); err != nil {
			return err
		}
		return repo.Save(ctx, testutil.NewTestNode("kept-b"), operator)
	})
	require.NoError(t, err)

	page, err := NewSQLiteNodeRepo(database).FindPage(ctx, PageQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}
