package core

import (
	"time"
)

// ReleaseHeldItems builds one ItemRequestReleased per unit still held for the request.
// An assigned copy goes back to the shelf together with its unit.
func ReleaseHeldItems(request RequestState, now time.Time) DomainEvents {
	events := make(DomainEvents, 0, len(request.HeldItems))

	for _, held := range request.HeldItems {
		events = append(events, ItemRequestReleased{
			RequestID:  request.RequestID,
			PatronID:   request.PatronID,
			ItemID:     held.ItemID,
			InstanceID: held.InstanceID,
			Movement:   Move(BucketRequested, BucketAvailable),
			OccurredAt: ToOccurredAt(now),
		})
	}

	return events
}
