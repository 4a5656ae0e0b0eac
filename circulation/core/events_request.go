package core

import (
	"time"
)

const (
	BorrowRequestSubmittedEventType    = "BorrowRequestSubmitted"
	ItemRequestedEventType             = "ItemRequested"
	InstanceAssignedToRequestEventType = "InstanceAssignedToRequest"
	BorrowRequestApprovedEventType     = "BorrowRequestApproved"
	BorrowRequestCancelledEventType    = "BorrowRequestCancelled"
	BorrowRequestExpiredEventType      = "BorrowRequestExpired"
	ItemRequestReleasedEventType       = "ItemRequestReleased"
	BorrowRequestFulfilledEventType    = "BorrowRequestFulfilled"
)

// BorrowRequestSubmitted opens a borrow request in Pending.
// ItemIDs lists every item of the request, including the auto-reserved ones.
type BorrowRequestSubmitted struct {
	RequestID      RequestIDString
	PatronID       PatronIDString
	ItemIDs        []ItemIDString
	RequestType    string
	Locale         string
	ExpirationDate time.Time
	OccurredAt     OccurredAtTS
}

func (e BorrowRequestSubmitted) IsEventType() string      { return BorrowRequestSubmittedEventType }
func (e BorrowRequestSubmitted) HasOccurredAt() time.Time { return e.OccurredAt }

// ItemRequested holds one unit of an item for a request (available -> requested).
type ItemRequested struct {
	RequestID  RequestIDString
	PatronID   PatronIDString
	ItemID     ItemIDString
	Movement   Movement
	OccurredAt OccurredAtTS
}

func (e ItemRequested) IsEventType() string         { return ItemRequestedEventType }
func (e ItemRequested) HasOccurredAt() time.Time    { return e.OccurredAt }
func (e ItemRequested) InventoryMovement() Movement { return e.Movement }

// InstanceAssignedToRequest maps a held unit to a concrete copy, which leaves the shelf.
type InstanceAssignedToRequest struct {
	RequestID  RequestIDString
	PatronID   PatronIDString
	ItemID     ItemIDString
	InstanceID InstanceIDString
	OccurredAt OccurredAtTS
}

func (e InstanceAssignedToRequest) IsEventType() string      { return InstanceAssignedToRequestEventType }
func (e InstanceAssignedToRequest) HasOccurredAt() time.Time { return e.OccurredAt }

// BorrowRequestApproved is recorded once staff assigned a copy to every held item.
type BorrowRequestApproved struct {
	RequestID  RequestIDString
	PatronID   PatronIDString
	OccurredAt OccurredAtTS
}

func (e BorrowRequestApproved) IsEventType() string      { return BorrowRequestApprovedEventType }
func (e BorrowRequestApproved) HasOccurredAt() time.Time { return e.OccurredAt }

// BorrowRequestCancelled ends a Pending or Approved request on behalf of the patron or staff.
type BorrowRequestCancelled struct {
	RequestID  RequestIDString
	PatronID   PatronIDString
	Reason     string
	OccurredAt OccurredAtTS
}

func (e BorrowRequestCancelled) IsEventType() string      { return BorrowRequestCancelledEventType }
func (e BorrowRequestCancelled) HasOccurredAt() time.Time { return e.OccurredAt }

// BorrowRequestExpired ends a request that was not picked up before its ExpirationDate.
type BorrowRequestExpired struct {
	RequestID  RequestIDString
	PatronID   PatronIDString
	OccurredAt OccurredAtTS
}

func (e BorrowRequestExpired) IsEventType() string      { return BorrowRequestExpiredEventType }
func (e BorrowRequestExpired) HasOccurredAt() time.Time { return e.OccurredAt }

// ItemRequestReleased gives a held unit back (requested -> available).
// InstanceID is set if a copy had been assigned; it returns to the shelf.
type ItemRequestReleased struct {
	RequestID  RequestIDString
	PatronID   PatronIDString
	ItemID     ItemIDString
	InstanceID InstanceIDString
	Movement   Movement
	OccurredAt OccurredAtTS
}

func (e ItemRequestReleased) IsEventType() string         { return ItemRequestReleasedEventType }
func (e ItemRequestReleased) HasOccurredAt() time.Time    { return e.OccurredAt }
func (e ItemRequestReleased) InventoryMovement() Movement { return e.Movement }

// BorrowRequestFulfilled is recorded when all held items of a request were checked out.
type BorrowRequestFulfilled struct {
	RequestID  RequestIDString
	PatronID   PatronIDString
	RecordID   RecordIDString
	OccurredAt OccurredAtTS
}

func (e BorrowRequestFulfilled) IsEventType() string      { return BorrowRequestFulfilledEventType }
func (e BorrowRequestFulfilled) HasOccurredAt() time.Time { return e.OccurredAt }
