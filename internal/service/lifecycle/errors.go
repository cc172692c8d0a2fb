package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition возвращается, когда переход не разрешён из текущего статуса
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrHoldReasonRequired возвращается при откладывании без причины
	ErrHoldReasonRequired = fmt.Errorf("%w: hold reason required", ErrInvalidTransition)

	// ErrPlacementRequired возвращается, когда у записи нет техника и даты
	ErrPlacementRequired = fmt.Errorf("%w: technician and date required", ErrInvalidTransition)

	// ErrSplitRejected возвращается при недопустимом разделении, слиянии или удалении родителя
	ErrSplitRejected = errors.New("split rejected")

	// ErrNothingToSplit возвращается, когда не выбрана ни одна строка работ
	ErrNothingToSplit = fmt.Errorf("%w: at least one service line must move", ErrSplitRejected)

	// ErrActiveChildren возвращается, когда у родителя остались активные дочерние записи
	ErrActiveChildren = fmt.Errorf("%w: appointment has active split children", ErrSplitRejected)

	// ErrConfirmationRequired возвращается при удалении без явного подтверждения
	ErrConfirmationRequired = errors.New("delete requires explicit confirmation")
)
