package removecopy

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to withdraw a copy.
//
// Business Rules:
//
//	GIVEN: A copy of an existing item
//	WHEN: RemoveItemCopy command is received
//	THEN: ItemCopyRemovedFromCirculation is generated
//	      - copy on the shelf: available -> none
//	      - copy already written off (damaged or lost): no movement
//	ERROR: NotFound if the item or the copy is unknown
//	ERROR: StateConflict if the copy is borrowed, reserved or assigned to a request
//	IDEMPOTENCY: If the copy was already withdrawn, no event is generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	item := core.ProjectItem(history, command.ItemID)

	if !item.Exists() {
		return core.ErrorDecision(core.NotFoundError("item " + command.ItemID))
	}

	instance, found := item.Instance(command.InstanceID)
	if !found {
		return core.ErrorDecision(core.NotFoundError("copy " + command.InstanceID))
	}

	if err := item.CheckIntegrity(); err != nil {
		return core.ErrorDecision(err)
	}

	var movement core.Movement

	switch instance.Status {
	case core.InstanceWithdrawn:
		return core.IdempotentDecision()

	case core.InstanceInShelf:
		movement = core.Move(core.BucketAvailable, core.BucketNone)

	case core.InstanceDamaged, core.InstanceLost:
		movement = core.NoMovement()

	default:
		return core.ErrorDecision(core.StateConflictError("copy " + command.InstanceID + " is " + string(instance.Status)))
	}

	return core.SuccessDecision(
		core.ItemCopyRemovedFromCirculation{
			ItemID:     command.ItemID,
			InstanceID: command.InstanceID,
			Reason:     command.Reason,
			Movement:   movement,
			OccurredAt: command.OccurredAt,
		},
	)
}

// BuildEventFilter creates the filter for querying all events of the item.
func BuildEventFilter(itemID core.ItemIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", itemID)).
		Finalize()
}
