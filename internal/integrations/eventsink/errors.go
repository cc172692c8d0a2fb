package eventsink

import "errors"

var (
	ErrBufferFull = errors.New("eventsink: buffer is full")
	ErrClosed     = errors.New("eventsink: sink is closed")
)
