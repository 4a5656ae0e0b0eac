package core

import (
	"time"
)

const (
	DigitalBorrowRegisteredEventType = "DigitalBorrowRegistered"
	DigitalBorrowExtendedEventType   = "DigitalBorrowExtended"
	DigitalBorrowReturnedEventType   = "DigitalBorrowReturned"
	DigitalBorrowExpiredEventType    = "DigitalBorrowExpired"
)

// DigitalBorrowRegistered starts a lease on a digital resource after a settled payment.
type DigitalBorrowRegistered struct {
	BorrowID       BorrowIDString
	ResourceID     ResourceIDString
	PatronID       PatronIDString
	TransactionRef string
	ExpiryDate     time.Time
	OccurredAt     OccurredAtTS
}

func (e DigitalBorrowRegistered) IsEventType() string      { return DigitalBorrowRegisteredEventType }
func (e DigitalBorrowRegistered) HasOccurredAt() time.Time { return e.OccurredAt }

// DigitalBorrowExtended records a paid extension of a lease.
type DigitalBorrowExtended struct {
	BorrowID        BorrowIDString
	ResourceID      ResourceIDString
	PatronID        PatronIDString
	TransactionRef  string
	Fee             Money
	ExtensionNumber int
	PreviousExpiry  time.Time
	NewExpiryDate   time.Time
	OccurredAt      OccurredAtTS
}

func (e DigitalBorrowExtended) IsEventType() string      { return DigitalBorrowExtendedEventType }
func (e DigitalBorrowExtended) HasOccurredAt() time.Time { return e.OccurredAt }

// DigitalBorrowReturned ends a lease early.
type DigitalBorrowReturned struct {
	BorrowID   BorrowIDString
	ResourceID ResourceIDString
	PatronID   PatronIDString
	OccurredAt OccurredAtTS
}

func (e DigitalBorrowReturned) IsEventType() string      { return DigitalBorrowReturnedEventType }
func (e DigitalBorrowReturned) HasOccurredAt() time.Time { return e.OccurredAt }

// DigitalBorrowExpired is recorded by the digital expiry sweep.
type DigitalBorrowExpired struct {
	BorrowID   BorrowIDString
	ResourceID ResourceIDString
	PatronID   PatronIDString
	OccurredAt OccurredAtTS
}

func (e DigitalBorrowExpired) IsEventType() string      { return DigitalBorrowExpiredEventType }
func (e DigitalBorrowExpired) HasOccurredAt() time.Time { return e.OccurredAt }
