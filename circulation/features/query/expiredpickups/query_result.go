package expiredpickups

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// PickupInfo is one assigned reservation that was not collected in time.
type PickupInfo struct {
	ReservationID core.ReservationIDString
	ItemID        core.ItemIDString
	PatronID      core.PatronIDString
	ExpiryDate    time.Time
}

// ExpiredPickups represents the query result, ordered by expiry date (oldest first).
type ExpiredPickups struct {
	Pickups []PickupInfo
	Count   int
}
