package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent represents a business event that has occurred in the domain.
type DomainEvent interface {
	// IsEventType returns the string identifier for this event type.
	IsEventType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time
}

// InventoryMovingEvent is implemented by every event that moves units between inventory buckets.
// Item projections fold these movements through Inventory.Apply and nothing else.
type InventoryMovingEvent interface {
	DomainEvent
	InventoryMovement() Movement
}
