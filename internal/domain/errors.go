package domain

import "errors"

var (
	// ErrNotFound is wrapped by every store when an identifier is no longer present
	ErrNotFound = errors.New("not found")
	// ErrInvalidShape signals an appointment whose fields do not match its status
	ErrInvalidShape = errors.New("invalid appointment shape")
)
