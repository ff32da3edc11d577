package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned when a processed event with the same id already exists.
var ErrDuplicate = errors.New("processed event already exists")

// ProcessedEvent is the durable record written for every successfully handled message.
type ProcessedEvent struct {
	ID         string
	EventType  string
	ResourceID string

	// TaskID is only set for task.completed events; nil is stored as NULL.
	TaskID *string

	Action string

	// Payload is the original message body as compact JSON.
	Payload []byte

	ProcessedAt time.Time
}

// ProcessedEventStore persists processed events.
// Implementations must write each record atomically: either the whole row is
// committed or nothing is.
type ProcessedEventStore interface {
	SaveProcessedEvent(ctx context.Context, event *ProcessedEvent) error
}
