package itemavailability

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Project builds the availability of the queried item from its history.
//
// Query Logic:
//
//	GIVEN: An item with ItemID
//	WHEN: ItemAvailability query is executed
//	THEN: counters, forecast and the ordered Pending queue are returned
//	INCLUDES: effective availability for the patron given in the query
//	EXCLUDES: reservations that are Assigned, Collected, Expired or Cancelled
func Project(history core.DomainEvents, query Query, ageBucket time.Duration) ItemAvailability {
	item := core.ProjectItem(history, query.ItemID)
	forecast := item.Forecast()

	result := ItemAvailability{
		ItemID:               query.ItemID,
		Exists:               item.Exists(),
		Archived:             item.Lifecycle == core.ItemLifecycleArchived,
		Total:                item.Inventory.Total(),
		Available:            item.Inventory.Available(),
		Requested:            item.Inventory.Requested(),
		Borrowed:             item.Inventory.Borrowed(),
		Reserved:             item.Inventory.Reserved(),
		ExpectedAvailableMin: forecast.ExpectedAvailableMin,
		ExpectedAvailableMax: forecast.ExpectedAvailableMax,
	}

	// without a patron every Pending entry counts as someone else's
	result.EffectiveAvailability = max(item.EffectiveAvailability(query.PatronID), 0)

	queue := item.PendingQueue(ageBucket)
	result.Queue = make([]QueueEntry, 0, len(queue))

	for i, r := range queue {
		result.Queue = append(result.Queue, QueueEntry{
			Position:                   i + 1,
			ReservationID:              r.ReservationID,
			PatronID:                   r.PatronID,
			ReservationDate:            r.ReservationDate,
			ReservedAfterRequestFailed: r.ReservedAfterRequestFailed,
		})
	}

	return result
}

// BuildEventFilter creates the filter for querying all events of the item.
func BuildEventFilter(itemID core.ItemIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", itemID)).
		Finalize()
}
