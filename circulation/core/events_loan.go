package core

import (
	"time"
)

const (
	ItemCheckedOutEventType    = "ItemCheckedOut"
	LoanExtendedEventType      = "LoanExtended"
	ItemReturnedEventType      = "ItemReturned"
	LoanMarkedOverdueEventType = "LoanMarkedOverdue"
	LoanMarkedLostEventType    = "LoanMarkedLost"
)

// ItemCheckedOut is recorded per copy handed over to a patron. Copies handed over together
// share the RecordID. RequestID or ReservationID are set when the checkout converted them.
type ItemCheckedOut struct {
	RecordID       RecordIDString
	DetailID       DetailIDString
	PatronID       PatronIDString
	ItemID         ItemIDString
	InstanceID     InstanceIDString
	RequestID      RequestIDString
	ReservationID  ReservationIDString
	ConditionGrade string
	EstimatedPrice Money
	DueDate        time.Time
	Movement       Movement
	OccurredAt     OccurredAtTS
}

func (e ItemCheckedOut) IsEventType() string         { return ItemCheckedOutEventType }
func (e ItemCheckedOut) HasOccurredAt() time.Time    { return e.OccurredAt }
func (e ItemCheckedOut) InventoryMovement() Movement { return e.Movement }

// LoanExtended moves the due date of one loan detail.
type LoanExtended struct {
	DetailID        DetailIDString
	PatronID        PatronIDString
	ItemID          ItemIDString
	ExtensionNumber int
	PreviousDueDate time.Time
	NewDueDate      time.Time
	OccurredAt      OccurredAtTS
}

func (e LoanExtended) IsEventType() string      { return LoanExtendedEventType }
func (e LoanExtended) HasOccurredAt() time.Time { return e.OccurredAt }

// ItemReturned ends a loan. The movement tells where the unit went:
// available, reserved (handed to the queue head) or out of circulation (unusable condition).
type ItemReturned struct {
	DetailID        DetailIDString
	RecordID        RecordIDString
	PatronID        PatronIDString
	ItemID          ItemIDString
	InstanceID      InstanceIDString
	ReturnCondition string
	ConditionImages []string
	ReturnedLate    bool
	Movement        Movement
	OccurredAt      OccurredAtTS
}

func (e ItemReturned) IsEventType() string         { return ItemReturnedEventType }
func (e ItemReturned) HasOccurredAt() time.Time    { return e.OccurredAt }
func (e ItemReturned) InventoryMovement() Movement { return e.Movement }

// LoanMarkedOverdue is recorded by the overdue sweep once the due date has passed.
type LoanMarkedOverdue struct {
	DetailID   DetailIDString
	PatronID   PatronIDString
	ItemID     ItemIDString
	DueDate    time.Time
	OccurredAt OccurredAtTS
}

func (e LoanMarkedOverdue) IsEventType() string      { return LoanMarkedOverdueEventType }
func (e LoanMarkedOverdue) HasOccurredAt() time.Time { return e.OccurredAt }

// LoanMarkedLost writes the copy off (borrowed -> out of circulation).
type LoanMarkedLost struct {
	DetailID   DetailIDString
	PatronID   PatronIDString
	ItemID     ItemIDString
	InstanceID InstanceIDString
	Movement   Movement
	OccurredAt OccurredAtTS
}

func (e LoanMarkedLost) IsEventType() string         { return LoanMarkedLostEventType }
func (e LoanMarkedLost) HasOccurredAt() time.Time    { return e.OccurredAt }
func (e LoanMarkedLost) InventoryMovement() Movement { return e.Movement }
