package core

import (
	"time"
)

type FineStatus string

const (
	FineStatusUnknown FineStatus = ""
	FineStatusUnpaid  FineStatus = "Unpaid"
	FineStatusPaid    FineStatus = "Paid"
	FineStatusExpired FineStatus = "Expired"
)

// FineState is the projection of one fine.
type FineState struct {
	FineID         FineIDString
	DetailID       DetailIDString
	PatronID       PatronIDString
	ItemID         ItemIDString
	Kind           FineKind
	FinePolicyID   string
	Amount         Money
	Status         FineStatus
	AssessedAt     time.Time
	TransactionRef string
}

// ProjectFine folds the history into the state of fineID.
func ProjectFine(history DomainEvents, fineID FineIDString) FineState {
	s := FineState{FineID: fineID}

	for _, event := range history {
		switch e := event.(type) {
		case FineAssessed:
			if e.FineID == fineID {
				s.DetailID = e.DetailID
				s.PatronID = e.PatronID
				s.ItemID = e.ItemID
				s.Kind = e.Kind
				s.FinePolicyID = e.FinePolicyID
				s.Amount = e.Amount
				s.Status = FineStatusUnpaid
				s.AssessedAt = e.OccurredAt
			}

		case FinePaid:
			if e.FineID == fineID {
				s.Status = FineStatusPaid
				s.TransactionRef = e.TransactionRef
			}

		case FineExpired:
			if e.FineID == fineID {
				s.Status = FineStatusExpired
			}
		}
	}

	return s
}

func (s FineState) Exists() bool {
	return s.Status != FineStatusUnknown
}
