package addcopy

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to add a copy to circulation.
//
// Business Rules:
//
//	GIVEN: An item that is not archived and a copy with a known, usable condition grade
//	WHEN: AddItemCopy command is received
//	THEN: ItemCopyAddedToCirculation is generated (none -> available)
//	ERROR: NotFound if the item was archived
//	ERROR: PolicyResolution if the condition grade is unknown
//	ERROR: StateConflict if the grade is not usable or the price is negative
//	IDEMPOTENCY: If the copy was already added, no event is generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult {
	item := core.ProjectItem(history, command.ItemID)

	if item.Lifecycle == core.ItemLifecycleArchived {
		return core.ErrorDecision(core.NotFoundError("item " + command.ItemID + " is archived"))
	}

	if _, exists := item.Instance(command.InstanceID); exists {
		return core.IdempotentDecision()
	}

	if err := item.CheckIntegrity(); err != nil {
		return core.ErrorDecision(err)
	}

	grade, err := policy.ConditionGrade(command.ConditionGrade)
	if err != nil {
		return core.ErrorDecision(err)
	}

	if !grade.Usable {
		return core.ErrorDecision(core.StateConflictError("a copy in condition " + grade.Code + " cannot circulate"))
	}

	if command.EstimatedPrice < 0 {
		return core.ErrorDecision(core.StateConflictError("estimated price must not be negative"))
	}

	return core.SuccessDecision(
		core.ItemCopyAddedToCirculation{
			ItemID:         command.ItemID,
			InstanceID:     command.InstanceID,
			Barcode:        command.Barcode,
			ConditionGrade: grade.Code,
			EstimatedPrice: command.EstimatedPrice,
			Movement:       core.Move(core.BucketNone, core.BucketAvailable),
			OccurredAt:     command.OccurredAt,
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
