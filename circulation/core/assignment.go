package core

import (
	"time"
)

// AssignQueueHead builds the ReservationAssigned that hands instanceID to the next Pending entry
// of the item, skipping the entry with id skip. It reports false if nobody is waiting.
//
// The movement is Move(BucketAvailable, BucketReserved) for a copy taken from the shelf and
// NoMovement() for a unit that is already reserved (pickup expiry, staff cancel) or is moved
// to reserved by the same append (return).
func AssignQueueHead(
	item ItemState,
	policy CirculationPolicy,
	skip ReservationIDString,
	instanceID InstanceIDString,
	reservationCode string,
	movement Movement,
	now time.Time,
) (ReservationAssigned, bool) {

	head, ok := item.QueueHead(policy.ReservationAgeBucket, skip)
	if !ok {
		return ReservationAssigned{}, false
	}

	return ReservationAssigned{
		ReservationID:   head.ReservationID,
		PatronID:        head.PatronID,
		ItemID:          item.ItemID,
		InstanceID:      instanceID,
		ReservationCode: reservationCode,
		ExpiryDate:      ToOccurredAt(now.Add(policy.PickupWindow)),
		Movement:        movement,
		OccurredAt:      ToOccurredAt(now),
	}, true
}

// CheckActiveItem returns ErrNotFound for unknown or archived items and the integrity
// violation of an item whose history does not fold into a consistent ledger.
func CheckActiveItem(item ItemState) error {
	if !item.IsActive() {
		return NotFoundError("item " + item.ItemID)
	}

	return item.CheckIntegrity()
}

// HandOffOrRelease decides where the copy of an ending Assigned reservation goes. If another
// entry waits, the copy stays reserved and is assigned to it: the ending event moves nothing and
// the returned events hold the new assignment. Otherwise the unit goes back to available.
func HandOffOrRelease(
	item ItemState,
	policy CirculationPolicy,
	ending ReservationState,
	reservationCode string,
	now time.Time,
) (Movement, DomainEvents, error) {

	next, waiting := AssignQueueHead(item, policy, ending.ReservationID, ending.InstanceID, reservationCode, NoMovement(), now)
	if !waiting {
		return Move(BucketReserved, BucketAvailable), nil, nil
	}

	if reservationCode == "" {
		return Movement{}, nil, StateConflictError("a reservation code is required to hand the copy to the next entry")
	}

	return NoMovement(), DomainEvents{next}, nil
}
