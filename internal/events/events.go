// Package events provides the in-process bus for board events.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the scheduling board.
const (
	TypeAppointmentChanged    = "appointment.changed"
	TypeAppointmentCreated    = "appointment.created"
	TypeAppointmentDeleted    = "appointment.deleted"
	TypeAppointmentCorrected  = "appointment.corrected"
	TypeAppointmentRolledBack = "appointment.rolled_back"
	TypeAppointmentOrphaned   = "appointment.orphan_repaired"
)

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// Event represents a lightweight domain event.
type Event struct {
	ID            string
	Type          string
	AppointmentID int64
	Payload       []byte
	CreatedAt     time.Time
}

// Handler reacts to an event.
type Handler func(event Event) error

// Logger is used to report handler failures.
type Logger interface {
	Warn(format string, v ...interface{})
}

// Bus provides in-process pub/sub for events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
	logger      Logger
}

// NewBus constructs an empty bus. logger may be nil.
func NewBus(logger Logger) *Bus {
	return &Bus{subscribers: make(map[string][]Handler), logger: logger}
}

// Subscribe registers a handler for a given event type or Wildcard.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type, then wildcard subscribers.
// Handlers run synchronously; a failing handler does not stop the others.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	handlers = append(handlers, b.subscribers[Wildcard]...)
	b.mu.RUnlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil && b.logger != nil {
			b.logger.Warn("events: handler for %s id=%s failed: %v", event.Type, event.ID, err)
		}
	}
}

// PublishJSON marshals payload and publishes it for the appointment.
func (b *Bus) PublishJSON(eventType string, appointmentID int64, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal %s payload: %w", eventType, err)
	}
	b.Publish(Event{Type: eventType, AppointmentID: appointmentID, Payload: data})
	return nil
}
