// Package events re-exports the platform event bus so domain modules depend on
// internal/events only.
package events

import (
	platformevents "exits_backend/platform/events"
	"exits_backend/platform/logger"
)

// InMemoryBus is the platform in-process bus.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
