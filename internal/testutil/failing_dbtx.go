package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/nodestore/internal/db"
)

// FailingDBTX wraps a DBTX and fails calls after a number of successful ones.
//
// FailExecAfter and FailQueryAfter count successful calls allowed before
// failures begin; a negative value never fails. ExecContext and QueryContext
// return Err. QueryRowContext cannot carry a custom error through *sql.Row,
// so a failing row read runs on a cancelled context and reports
// context.Canceled.
type FailingDBTX struct {
	db.DBTX
	FailExecAfter  int32
	FailQueryAfter int32
	Err            error

	execs   atomic.Int32
	queries atomic.Int32
}

// NewFailingDBTX fails every call with err.
func NewFailingDBTX(inner db.DBTX, err error) *FailingDBTX {
	return &FailingDBTX{DBTX: inner, Err: err}
}

func (f *FailingDBTX) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.fail(&f.execs, f.FailExecAfter) {
		return nil, f.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

func (f *FailingDBTX) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if f.fail(&f.queries, f.FailQueryAfter) {
		return nil, f.Err
	}
	return f.DBTX.QueryContext(ctx, query, args...)
}

func (f *FailingDBTX) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	if f.fail(&f.queries, f.FailQueryAfter) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		return f.DBTX.QueryRowContext(cancelled, query, args...)
	}
	return f.DBTX.QueryRowContext(ctx, query, args...)
}

func (f *FailingDBTX) fail(counter *atomic.Int32, after int32) bool {
	if after < 0 {
		return false
	}
	return counter.Add(1) > after
}

// FailOnNthExecUoW is a test UoW that injects an error on the Nth ExecContext
// call within a transaction. ExecContext calls are counted starting at 1;
// reads pass through.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &FailingDBTX{DBTX: tx, FailExecAfter: u.FailOn - 1, FailQueryAfter: -1, Err: u.Err}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}
