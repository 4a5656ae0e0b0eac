package core

import (
	"time"
)

const (
	ReservationPlacedEventType        = "ReservationPlaced"
	ReservationAssignedEventType      = "ReservationAssigned"
	ReservationCollectedEventType     = "ReservationCollected"
	ReservationCancelledEventType     = "ReservationCancelled"
	ReservationPickupExpiredEventType = "ReservationPickupExpired"
)

// ReservationPlaced adds a Pending entry to the queue of an item. Its OccurredAt is the
// ReservationDate. Auto-reservations of failed borrow requests carry the RequestID.
type ReservationPlaced struct {
	ReservationID              ReservationIDString
	PatronID                   PatronIDString
	ItemID                     ItemIDString
	RequestID                  RequestIDString
	ReservedAfterRequestFailed bool
	ExpectedAvailableMin       time.Time
	ExpectedAvailableMax       time.Time
	OccurredAt                 OccurredAtTS
}

func (e ReservationPlaced) IsEventType() string      { return ReservationPlacedEventType }
func (e ReservationPlaced) HasOccurredAt() time.Time { return e.OccurredAt }

// ReservationAssigned makes a copy ready for pickup. The movement is available -> reserved
// for a shelf copy and empty when the unit is already reserved (return or pickup hand-off).
type ReservationAssigned struct {
	ReservationID   ReservationIDString
	PatronID        PatronIDString
	ItemID          ItemIDString
	InstanceID      InstanceIDString
	ReservationCode string
	ExpiryDate      time.Time
	Movement        Movement
	OccurredAt      OccurredAtTS
}

func (e ReservationAssigned) IsEventType() string         { return ReservationAssignedEventType }
func (e ReservationAssigned) HasOccurredAt() time.Time    { return e.OccurredAt }
func (e ReservationAssigned) InventoryMovement() Movement { return e.Movement }

// ReservationCollected is recorded together with the ItemCheckedOut of the pickup.
type ReservationCollected struct {
	ReservationID ReservationIDString
	PatronID      PatronIDString
	ItemID        ItemIDString
	DetailID      DetailIDString
	OccurredAt    OccurredAtTS
}

func (e ReservationCollected) IsEventType() string      { return ReservationCollectedEventType }
func (e ReservationCollected) HasOccurredAt() time.Time { return e.OccurredAt }

// ReservationCancelled removes an entry from the queue. Cancelling an assigned entry
// releases the unit (reserved -> available) unless it is handed to the next entry.
type ReservationCancelled struct {
	ReservationID ReservationIDString
	PatronID      PatronIDString
	ItemID        ItemIDString
	Reason        string
	StaffOverride bool
	Movement      Movement
	OccurredAt    OccurredAtTS
}

func (e ReservationCancelled) IsEventType() string         { return ReservationCancelledEventType }
func (e ReservationCancelled) HasOccurredAt() time.Time    { return e.OccurredAt }
func (e ReservationCancelled) InventoryMovement() Movement { return e.Movement }

// ReservationPickupExpired is recorded when an assigned copy was not collected in time.
type ReservationPickupExpired struct {
	ReservationID ReservationIDString
	PatronID      PatronIDString
	ItemID        ItemIDString
	Movement      Movement
	OccurredAt    OccurredAtTS
}

func (e ReservationPickupExpired) IsEventType() string         { return ReservationPickupExpiredEventType }
func (e ReservationPickupExpired) HasOccurredAt() time.Time    { return e.OccurredAt }
func (e ReservationPickupExpired) InventoryMovement() Movement { return e.Movement }
