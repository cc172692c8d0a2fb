package appointment

import (
	"context"

	"github.com/m04kA/SMC-ShopScheduler/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
type TxExecutor = dbmetrics.TxExecutor

// TransactionManager оборачивает многострочные записи в транзакцию,
// а чтение записи со строками работ в один снимок
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
