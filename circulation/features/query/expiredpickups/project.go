package expiredpickups

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Project lists the Assigned reservations whose ExpiryDate lies before Now.
func Project(history core.DomainEvents, query Query) ExpiredPickups {
	assigned := make(map[core.ReservationIDString]*PickupInfo)

	for _, event := range history {
		switch e := event.(type) {
		case core.ReservationAssigned:
			assigned[e.ReservationID] = &PickupInfo{
				ReservationID: e.ReservationID,
				ItemID:        e.ItemID,
				PatronID:      e.PatronID,
				ExpiryDate:    e.ExpiryDate,
			}

		case core.ReservationCollected:
			delete(assigned, e.ReservationID)

		case core.ReservationCancelled:
			delete(assigned, e.ReservationID)

		case core.ReservationPickupExpired:
			delete(assigned, e.ReservationID)
		}
	}

	result := ExpiredPickups{Pickups: make([]PickupInfo, 0)}

	for _, pickup := range assigned {
		if query.Now.After(pickup.ExpiryDate) {
			result.Pickups = append(result.Pickups, *pickup)
		}
	}

	slices.SortFunc(result.Pickups, func(a, b PickupInfo) int {
		if c := a.ExpiryDate.Compare(b.ExpiryDate); c != 0 {
			return c
		}

		return cmp.Compare(a.ReservationID, b.ReservationID)
	})

	result.Count = len(result.Pickups)

	return result
}

// BuildEventFilter creates the filter for querying the assignment lifecycle of all reservations.
func BuildEventFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.ReservationAssignedEventType,
			core.ReservationCollectedEventType,
			core.ReservationCancelledEventType,
			core.ReservationPickupExpiredEventType,
		).
		Finalize()
}
