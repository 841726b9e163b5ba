package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type (
	txKey    struct{}
	hooksKey struct{}
)

type commitHooks struct {
	fns []func(ctx context.Context)
}

// TxManager runs a function inside one database transaction. Repositories
// pick the transaction up from the context through Conn, so usecases can
// compose several repository calls atomically.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	return withHooks(ctx, func(hctx context.Context) error {
		return WithTx(hctx, m.db, func(tx *sqlx.Tx) error {
			return fn(context.WithValue(hctx, txKey{}, tx))
		})
	})
}

// AfterCommit defers fn until the outermost WithinTx around ctx has
// committed. It is dropped on rollback and runs at once outside a transaction.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	if h, ok := ctx.Value(hooksKey{}).(*commitHooks); ok {
		h.fns = append(h.fns, fn)
		return
	}
	fn(ctx)
}

func withHooks(ctx context.Context, run func(ctx context.Context) error) error {
	h := &commitHooks{}
	if err := run(context.WithValue(ctx, hooksKey{}, h)); err != nil {
		return err
	}
	for _, fn := range h.fns {
		fn(ctx)
	}
	return nil
}

// WithTx begins a transaction, commits when fn succeeds and rolls back otherwise.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// Conn returns the transaction stored in ctx, or db when there is none.
func Conn(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// NoopTxManager calls fn directly, keeping AfterCommit semantics. Usecase
// tests use it with in-memory fakes.
type NoopTxManager struct{}

func (NoopTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(hooksKey{}).(*commitHooks); ok {
		return fn(ctx)
	}
	return withHooks(ctx, fn)
}
