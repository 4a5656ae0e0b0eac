package core

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Instead of implementing full value objects, alias types and helper functions are used here.

type ItemIDString = string
type InstanceIDString = string
type PatronIDString = string
type RequestIDString = string
type RecordIDString = string
type DetailIDString = string
type ReservationIDString = string
type FineIDString = string
type ResourceIDString = string
type BorrowIDString = string

// OccurredAtTS represents when an event occurred.
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}

// Money is an amount in minor currency units.
type Money int64

// Percentage is a value between 0 and 100.
type Percentage = float64

// PercentOf returns pct percent of m, rounded half away from zero.
func PercentOf(m Money, pct Percentage) Money {
	return Money(math.Round(float64(m) * pct / 100))
}

var idNamespace = uuid.MustParse("8f5f8a3e-7a4c-4c1e-9d8e-2f1b6c0a9e11")

// DetailIDFor derives the loan detail id of one copy handed over in a checkout.
// The derivation is deterministic, so retried commands produce the same ids.
func DetailIDFor(recordID RecordIDString, instanceID InstanceIDString) DetailIDString {
	return uuid.NewSHA1(idNamespace, []byte("detail/"+recordID+"/"+instanceID)).String()
}

// FineIDFor derives the id of the fine of a given kind for one loan detail.
// A loan can therefore carry at most one fine per kind.
func FineIDFor(detailID DetailIDString, kind FineKind) FineIDString {
	return uuid.NewSHA1(idNamespace, []byte("fine/"+detailID+"/"+string(kind))).String()
}

// ReservationIDFor derives the id of the auto-reservation a borrow request places for an item.
func ReservationIDFor(requestID RequestIDString, itemID ItemIDString) ReservationIDString {
	return uuid.NewSHA1(idNamespace, []byte("reservation/"+requestID+"/"+itemID)).String()
}
