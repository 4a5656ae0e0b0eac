package core

import (
	"time"
)

const (
	ItemCopyAddedToCirculationEventType     = "ItemCopyAddedToCirculation"
	ItemCopyRemovedFromCirculationEventType = "ItemCopyRemovedFromCirculation"
	ItemArchivedEventType                   = "ItemArchived"
	PatronRegisteredEventType               = "PatronRegistered"
	LibraryCardDeactivatedEventType         = "LibraryCardDeactivated"
	PatronSuspendedEventType                = "PatronSuspended"
	PatronReinstatedEventType               = "PatronReinstated"
)

// ItemCopyAddedToCirculation is recorded when a physical copy of an item enters circulation.
// The first copy also makes the item Active.
type ItemCopyAddedToCirculation struct {
	ItemID         ItemIDString
	InstanceID     InstanceIDString
	Barcode        string
	ConditionGrade string
	EstimatedPrice Money
	Movement       Movement
	OccurredAt     OccurredAtTS
}

func (e ItemCopyAddedToCirculation) IsEventType() string         { return ItemCopyAddedToCirculationEventType }
func (e ItemCopyAddedToCirculation) HasOccurredAt() time.Time    { return e.OccurredAt }
func (e ItemCopyAddedToCirculation) InventoryMovement() Movement { return e.Movement }

// ItemCopyRemovedFromCirculation is recorded when staff withdraws a copy.
// Copies still in the shelf leave the available bucket, damaged or lost copies move nothing.
type ItemCopyRemovedFromCirculation struct {
	ItemID     ItemIDString
	InstanceID InstanceIDString
	Reason     string
	Movement   Movement
	OccurredAt OccurredAtTS
}

func (e ItemCopyRemovedFromCirculation) IsEventType() string {
	return ItemCopyRemovedFromCirculationEventType
}
func (e ItemCopyRemovedFromCirculation) HasOccurredAt() time.Time    { return e.OccurredAt }
func (e ItemCopyRemovedFromCirculation) InventoryMovement() Movement { return e.Movement }

// ItemArchived ends the lifecycle of an item; it behaves as not found afterwards.
type ItemArchived struct {
	ItemID     ItemIDString
	Reason     string
	OccurredAt OccurredAtTS
}

func (e ItemArchived) IsEventType() string      { return ItemArchivedEventType }
func (e ItemArchived) HasOccurredAt() time.Time { return e.OccurredAt }

// PatronRegistered is recorded when a patron gets a library card.
type PatronRegistered struct {
	PatronID   PatronIDString
	Name       string
	Locale     string
	OccurredAt OccurredAtTS
}

func (e PatronRegistered) IsEventType() string      { return PatronRegisteredEventType }
func (e PatronRegistered) HasOccurredAt() time.Time { return e.OccurredAt }

// LibraryCardDeactivated is recorded when a patron's card is no longer valid.
type LibraryCardDeactivated struct {
	PatronID   PatronIDString
	Reason     string
	OccurredAt OccurredAtTS
}

func (e LibraryCardDeactivated) IsEventType() string      { return LibraryCardDeactivatedEventType }
func (e LibraryCardDeactivated) HasOccurredAt() time.Time { return e.OccurredAt }

// PatronSuspended revokes borrowing privileges, e.g. after too many missed pickups.
type PatronSuspended struct {
	PatronID          PatronIDString
	Reason            string
	TotalMissedPickUp int
	OccurredAt        OccurredAtTS
}

func (e PatronSuspended) IsEventType() string      { return PatronSuspendedEventType }
func (e PatronSuspended) HasOccurredAt() time.Time { return e.OccurredAt }

// PatronReinstated lifts a suspension and resets the missed pickup counter.
type PatronReinstated struct {
	PatronID   PatronIDString
	OccurredAt OccurredAtTS
}

func (e PatronReinstated) IsEventType() string      { return PatronReinstatedEventType }
func (e PatronReinstated) HasOccurredAt() time.Time { return e.OccurredAt }
