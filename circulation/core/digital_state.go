package core

import (
	"time"
)

type DigitalBorrowStatus string

const (
	DigitalBorrowStatusUnknown  DigitalBorrowStatus = ""
	DigitalBorrowStatusActive   DigitalBorrowStatus = "Active"
	DigitalBorrowStatusExpired  DigitalBorrowStatus = "Expired"
	DigitalBorrowStatusReturned DigitalBorrowStatus = "Returned"
)

type DigitalExtension struct {
	TransactionRef string
	Fee            Money
	ExtendedAt     time.Time
	NewExpiryDate  time.Time
}

// DigitalBorrowState is the projection of one digital lease.
type DigitalBorrowState struct {
	BorrowID       BorrowIDString
	ResourceID     ResourceIDString
	PatronID       PatronIDString
	Status         DigitalBorrowStatus
	TransactionRef string
	BorrowedAt     time.Time
	ExpiryDate     time.Time
	Extensions     []DigitalExtension
}

// ProjectDigitalBorrow folds the history into the state of borrowID.
func ProjectDigitalBorrow(history DomainEvents, borrowID BorrowIDString) DigitalBorrowState {
	s := DigitalBorrowState{BorrowID: borrowID}

	for _, event := range history {
		switch e := event.(type) {
		case DigitalBorrowRegistered:
			if e.BorrowID == borrowID {
				s.ResourceID = e.ResourceID
				s.PatronID = e.PatronID
				s.Status = DigitalBorrowStatusActive
				s.TransactionRef = e.TransactionRef
				s.BorrowedAt = e.OccurredAt
				s.ExpiryDate = e.ExpiryDate
			}

		case DigitalBorrowExtended:
			if e.BorrowID == borrowID {
				s.ExpiryDate = e.NewExpiryDate
				s.Extensions = append(s.Extensions, DigitalExtension{
					TransactionRef: e.TransactionRef,
					Fee:            e.Fee,
					ExtendedAt:     e.OccurredAt,
					NewExpiryDate:  e.NewExpiryDate,
				})
			}

		case DigitalBorrowReturned:
			if e.BorrowID == borrowID {
				s.Status = DigitalBorrowStatusReturned
			}

		case DigitalBorrowExpired:
			if e.BorrowID == borrowID {
				s.Status = DigitalBorrowStatusExpired
			}
		}
	}

	return s
}

// ActiveDigitalBorrow finds the Active lease of patronID on resourceID.
func ActiveDigitalBorrow(history DomainEvents, resourceID ResourceIDString, patronID PatronIDString) (DigitalBorrowState, bool) {
	for _, event := range history {
		e, ok := event.(DigitalBorrowRegistered)
		if !ok || e.ResourceID != resourceID || e.PatronID != patronID {
			continue
		}

		if s := ProjectDigitalBorrow(history, e.BorrowID); s.Status == DigitalBorrowStatusActive {
			return s, true
		}
	}

	return DigitalBorrowState{}, false
}

func (s DigitalBorrowState) Exists() bool {
	return s.Status != DigitalBorrowStatusUnknown
}
