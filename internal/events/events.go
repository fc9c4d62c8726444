package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the parameter service.
const (
	ParameterCreated  = "parameter.created"
	ParameterUpdated  = "parameter.updated"
	ParameterDeleted  = "parameter.deleted"
	ValidatorsChanged = "parameter.validators_changed"
	KeyRotated        = "key.rotated"
)

// ParameterEvent describes one committed change.
type ParameterEvent struct {
	ID   uuid.UUID `json:"id"`
	Type string    `json:"type"`

	// Slug is empty for events that are not about a single parameter.
	Slug string `json:"slug,omitempty"`

	// Count is the number of parameters affected, used by bulk operations.
	Count int `json:"count,omitempty"`

	// Failed counts parameters a bulk operation could not process.
	Failed int `json:"failed,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// NewParameterEvent creates an event of eventType for slug.
func NewParameterEvent(eventType, slug string) *ParameterEvent {
	return &ParameterEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Slug:       slug,
		Count:      1,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler processes events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *ParameterEvent) error
}

// EventEmitter publishes events to whoever is listening.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *ParameterEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *ParameterEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ParameterEvent) error {
	return f(ctx, event)
}

// NopEmitter drops every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *ParameterEvent) error { return nil }
