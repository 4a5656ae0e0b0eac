package itemavailability

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// QueueEntry is one Pending reservation, Position 1 is assigned next.
type QueueEntry struct {
	Position                   int
	ReservationID              core.ReservationIDString
	PatronID                   core.PatronIDString
	ReservationDate            time.Time
	ReservedAfterRequestFailed bool
}

// ItemAvailability represents the query result.
type ItemAvailability struct {
	ItemID                core.ItemIDString
	Exists                bool
	Archived              bool
	Total                 int
	Available             int
	Requested             int
	Borrowed              int
	Reserved              int
	EffectiveAvailability int
	ExpectedAvailableMin  time.Time
	ExpectedAvailableMax  time.Time
	Queue                 []QueueEntry
}
