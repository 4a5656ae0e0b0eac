package core

import (
	"time"
)

const (
	FineAssessedEventType = "FineAssessed"
	FinePaidEventType     = "FinePaid"
	FineExpiredEventType  = "FineExpired"
)

// FineKind is the infraction a fine was assessed for.
type FineKind string

const (
	FineKindOverdue FineKind = "Overdue"
	FineKindDamage  FineKind = "Damage"
	FineKindLost    FineKind = "Lost"
)

// FineAssessed creates an Unpaid fine for one loan detail.
type FineAssessed struct {
	FineID       FineIDString
	DetailID     DetailIDString
	PatronID     PatronIDString
	ItemID       ItemIDString
	Kind         FineKind
	FinePolicyID string
	Amount       Money
	OccurredAt   OccurredAtTS
}

func (e FineAssessed) IsEventType() string      { return FineAssessedEventType }
func (e FineAssessed) HasOccurredAt() time.Time { return e.OccurredAt }

// FinePaid settles a fine with the reference of the payment transaction.
type FinePaid struct {
	FineID         FineIDString
	PatronID       PatronIDString
	Amount         Money
	TransactionRef string
	OccurredAt     OccurredAtTS
}

func (e FinePaid) IsEventType() string      { return FinePaidEventType }
func (e FinePaid) HasOccurredAt() time.Time { return e.OccurredAt }

// FineExpired writes off an unpaid fine.
type FineExpired struct {
	FineID     FineIDString
	PatronID   PatronIDString
	Reason     string
	OccurredAt OccurredAtTS
}

func (e FineExpired) IsEventType() string      { return FineExpiredEventType }
func (e FineExpired) HasOccurredAt() time.Time { return e.OccurredAt }
