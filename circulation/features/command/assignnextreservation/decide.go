package assignnextreservation

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to assign the next reservation in the queue.
//
// Business Rules:
//
//	GIVEN: An active item with a Pending queue head, an available unit and a shelf copy
//	WHEN: AssignNextReservation command is received
//	THEN: ReservationAssigned (available -> reserved) for the queue head
//	ERROR: NotFound if the item or the given copy is unknown
//	ERROR: StateConflict if the given copy is not on the shelf or no reservation code was issued
//	IDEMPOTENCY: If nobody waits or nothing is free, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult {
	item := core.ProjectItem(history, command.ItemID)

	if err := core.CheckActiveItem(item); err != nil {
		return core.ErrorDecision(err)
	}

	if _, waiting := item.QueueHead(policy.ReservationAgeBucket, ""); !waiting || item.Inventory.Available() == 0 {
		return core.IdempotentDecision()
	}

	var instance core.InstanceState

	if command.InstanceID != "" {
		found := false
		if instance, found = item.Instance(command.InstanceID); !found {
			return core.ErrorDecision(core.NotFoundError("copy " + command.InstanceID + " of item " + command.ItemID))
		}

		if instance.Status != core.InstanceInShelf {
			return core.ErrorDecision(core.StateConflictError("copy " + command.InstanceID + " is " + string(instance.Status)))
		}
	} else {
		onShelf := false
		if instance, onShelf = item.FirstInShelfInstance(); !onShelf {
			return core.IdempotentDecision()
		}
	}

	if command.ReservationCode == "" {
		return core.ErrorDecision(core.StateConflictError("a reservation code is required to assign the queue head"))
	}

	assigned, _ := core.AssignQueueHead(
		item,
		policy,
		"",
		instance.InstanceID,
		command.ReservationCode,
		core.Move(core.BucketAvailable, core.BucketReserved),
		command.OccurredAt,
	)

	return core.SuccessDecision(assigned)
}

// BuildEventFilter creates the filter for querying all events of the item.
func BuildEventFilter(itemID core.ItemIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", itemID)).
		Finalize()
}
