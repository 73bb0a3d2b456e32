package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Op is a staged write executed against the unit of work's connection.
type Op func(ctx context.Context, tx DBTX) error

// UnitOfWork batches staged writes and flushes them atomically.
//
// Without an explicit transaction, SaveChanges opens and commits its own.
// BeginTransaction opens a transaction that subsequent reads (Conn) and
// SaveChanges calls share until Commit or Rollback. A UnitOfWork is
// request-scoped and must not be shared between goroutines.
type UnitOfWork struct {
	db     *sql.DB
	opts   *sql.TxOptions
	tx     *sql.Tx
	staged []Op
}

func NewUnitOfWork(db *sql.DB, opts *sql.TxOptions) *UnitOfWork {
	return &UnitOfWork{db: db, opts: opts}
}

// Conn returns the open transaction, or the pool when none is open.
func (u *UnitOfWork) Conn() DBTX {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// InTransaction reports whether an explicit transaction is open.
func (u *UnitOfWork) InTransaction() bool { return u.tx != nil }

// Stage queues op for the next SaveChanges.
func (u *UnitOfWork) Stage(op Op) {
	u.staged = append(u.staged, op)
}

// Pending is the number of staged, unflushed operations.
func (u *UnitOfWork) Pending() int { return len(u.staged) }

// BeginTransaction opens a transaction. It is a no-op when one is already open.
// The transaction is not bound to ctx's cancellation: it ends only through
// Commit or Rollback.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	if u.tx != nil {
		return nil
	}
	tx, err := u.db.BeginTx(context.WithoutCancel(ctx), u.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	u.tx = tx
	return nil
}

// SaveChanges flushes staged operations and returns how many ran. Staged
// operations are discarded whether or not the flush succeeds.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int, error) {
	ops := u.staged
	u.staged = nil
	if len(ops) == 0 {
		return 0, nil
	}

	flush := func(ctx context.Context, tx DBTX) error {
		for _, op := range ops {
			if err := op(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	}

	if u.tx != nil {
		if err := flush(ctx, u.tx); err != nil {
			return 0, err
		}
		return len(ops), nil
	}

	if err := WithTx(ctx, u.db, u.opts, flush); err != nil {
		return 0, err
	}
	return len(ops), nil
}

// Commit flushes staged operations and commits the open transaction. It
// runs to completion even if ctx is cancelled. On any failure the
// transaction is rolled back before the error is returned.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	if _, err := u.SaveChanges(ctx); err != nil {
		if rbErr := u.Rollback(ctx); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	if u.tx == nil {
		return nil
	}

	tx := u.tx
	u.tx = nil
	if err := tx.Commit(); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(fmt.Errorf("commit: %w", err), rbErr)
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards staged operations and aborts the open transaction.
// Calling it without an open transaction, or after the transaction has
// finished, is a no-op.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	u.staged = nil
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
