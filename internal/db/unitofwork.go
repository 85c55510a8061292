package db

import (
	"context"
	"database/sql"
	"fmt"
)

// UnitOfWork is the transaction boundary for callers that need several store
// operations to commit or roll back together. The callback receives a DBTX
// backed by a *sql.Tx; build tx-scoped repositories from it.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLiteUnitOfWork implements UnitOfWork using database/sql transactions.
type SQLiteUnitOfWork struct {
	db *sql.DB
}

// NewSQLiteUnitOfWork creates a UnitOfWork backed by the given *sql.DB.
func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// WithinTx runs fn inside a transaction. A returned error or a panic rolls
// back; otherwise the transaction commits.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// InTx runs fn in a transaction on conn. A *sql.DB gets a fresh transaction
// from SQLiteUnitOfWork. Any other DBTX (a *sql.Tx handed out by an enclosing
// unit of work, a test wrapper) is passed through, so fn joins the caller's
// transaction instead of nesting one.
func InTx(ctx context.Context, conn DBTX, fn func(ctx context.Context, tx DBTX) error) error {
	if database, ok := conn.(*sql.DB); ok {
		return NewSQLiteUnitOfWork(database).WithinTx(ctx, fn)
	}
	return fn(ctx, conn)
}
