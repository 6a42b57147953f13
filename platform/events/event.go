// Package events is the in-process publish/subscribe layer that lets lead
// capture, subscriptions and digests trigger notifications without
// importing the notification module.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is anything that can travel over the bus.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	EventID() uuid.UUID
}

// BaseEvent is embedded by concrete events to satisfy OccurredAt and EventID.
type BaseEvent struct {
	ID        uuid.UUID `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

func (e BaseEvent) EventID() uuid.UUID { return e.ID }

// NewBaseEvent stamps a fresh event with a random ID and the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

// Handler reacts to a published event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function act as a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans events out to subscribers. Publish is fire-and-forget: handler
// errors are logged by the bus and never reach the publisher. PublishSync
// runs handlers inline and returns their joined errors.
type Bus interface {
	Publish(ctx context.Context, event Event)
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
