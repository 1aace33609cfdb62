package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DBTX is what repositories run statements against: the pool for standalone
// reads and writes, or the open transaction inside WithinTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// UnitOfWork runs a read-modify-write use case atomically. Repositories used
// inside fn must be built on the tx it receives.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// ErrBusy marks a transaction that could not take the write lock.
var ErrBusy = errors.New("database busy")

const (
	defaultBeginAttempts = 3
	beginBackoff         = 50 * time.Millisecond
)

// SQLiteUnitOfWork opens write transactions on a database from OpenDB. The
// connection's _txlock=immediate makes BEGIN take the write lock, so two use
// cases touching different tasks queue on the lock instead of failing at the
// first write. A BEGIN that is still busy after the driver's busy timeout is
// retried a few times before giving up with ErrBusy.
type SQLiteUnitOfWork struct {
	db       *sql.DB
	attempts int
}

type UnitOfWorkOption func(*SQLiteUnitOfWork)

// WithBeginAttempts bounds how many times a busy BEGIN is tried.
func WithBeginAttempts(n int) UnitOfWorkOption {
	return func(u *SQLiteUnitOfWork) {
		if n > 0 {
			u.attempts = n
		}
	}
}

func NewSQLiteUnitOfWork(db *sql.DB, opts ...UnitOfWorkOption) *SQLiteUnitOfWork {
	u := &SQLiteUnitOfWork{db: db, attempts: defaultBeginAttempts}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

func (u *SQLiteUnitOfWork) begin(ctx context.Context) (*sql.Tx, error) {
	var err error
	for attempt := 1; ; attempt++ {
		var tx *sql.Tx
		tx, err = u.db.BeginTx(ctx, nil)
		if err == nil {
			return tx, nil
		}
		if !IsBusy(err) || attempt >= u.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * beginBackoff):
		}
	}
	return nil, classify(fmt.Errorf("beginning transaction: %w", err))
}

// IsBusy reports whether err is SQLite refusing a lock (SQLITE_BUSY or
// SQLITE_LOCKED, any extended code) or an error already marked ErrBusy.
func IsBusy(err error) bool {
	if errors.Is(err, ErrBusy) {
		return true
	}
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	switch sqlErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

func classify(err error) error {
	if IsBusy(err) && !errors.Is(err, ErrBusy) {
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return err
}
