// Package dbmetrics wraps database/sql with query metrics and carries
// transactions through context.
package dbmetrics

import (
	"context"
	"database/sql"
)

// Executor общий набор методов *sql.DB и *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// DBExecutor соединение, умеющее открывать транзакции
type DBExecutor interface {
	Executor
	BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error)
}

// TxExecutor активная транзакция
type TxExecutor interface {
	Executor
	Commit() error
	Rollback() error
}

type txKey struct{}

// WithTx кладёт транзакцию в контекст
func WithTx(ctx context.Context, tx TxExecutor) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext достаёт транзакцию из контекста
func TxFromContext(ctx context.Context) (TxExecutor, bool) {
	tx, ok := ctx.Value(txKey{}).(TxExecutor)
	return tx, ok && tx != nil
}

// IsInTransaction возвращает true, если в контексте есть транзакция
func IsInTransaction(ctx context.Context) bool {
	_, ok := TxFromContext(ctx)
	return ok
}

// GetExecutor возвращает транзакцию из контекста или само соединение
func GetExecutor(ctx context.Context, db Executor) Executor {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}
