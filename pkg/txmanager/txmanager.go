// Package txmanager runs functions inside a database transaction carried by context.
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ShopScheduler/pkg/dbmetrics"
)

// ErrTransaction оборачивает ошибки открытия и фиксации транзакции
var ErrTransaction = errors.New("txmanager: transaction error")

// TransactionManager менеджер транзакций поверх dbmetrics.DBExecutor
type TransactionManager struct {
	db dbmetrics.DBExecutor
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db dbmetrics.DBExecutor) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, nil, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// run переиспользует транзакцию из контекста, если она уже открыта
func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("%w: commit: %v", ErrTransaction, cErr)
		}
	}()

	return fn(dbmetrics.WithTx(ctx, tx))
}
