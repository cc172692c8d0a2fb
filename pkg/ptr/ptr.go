// Package ptr contains pointer helpers.
package ptr

// Ptr возвращает указатель на копию значения
func Ptr[T any](v T) *T {
	return &v
}

// Value разыменовывает указатель или возвращает нулевое значение
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
