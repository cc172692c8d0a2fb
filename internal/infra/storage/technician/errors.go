package technician

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

var (
	// ErrTechnicianNotFound возвращается, когда техник не найден
	ErrTechnicianNotFound = fmt.Errorf("technician.repository: %w", domain.ErrNotFound)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("technician.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("technician.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("technician.repository: failed to scan row")
)
