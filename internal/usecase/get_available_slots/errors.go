package get_available_slots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrNoSlotFound возвращается, когда в горизонте поиска нет подходящего места
	ErrNoSlotFound = errors.New("get_available_slots: no available slot found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
