package timeoff

import "github.com/m04kA/SMC-ShopScheduler/pkg/dbmetrics"

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.Executor
