package archiveitem

import (
	"fmt"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to archive an item.
//
// Business Rules:
//
//	GIVEN: An Active item without open loans, held request units or active reservations
//	WHEN: ArchiveItem command is received
//	THEN: ItemArchived is generated; the item behaves as not found afterwards
//	ERROR: NotFound if the item is unknown
//	ERROR: StateConflict if the item is still in circulation
//	IDEMPOTENCY: If the item is already archived, no event is generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	item := core.ProjectItem(history, command.ItemID)

	if !item.Exists() {
		return core.ErrorDecision(core.NotFoundError("item " + command.ItemID))
	}

	if item.Lifecycle == core.ItemLifecycleArchived {
		return core.IdempotentDecision()
	}

	activeReservations := 0
	for _, r := range item.Reservations {
		if r.IsActive() {
			activeReservations++
		}
	}

	if loans := len(item.ActiveLoans()); loans > 0 || len(item.RequestUnits) > 0 || activeReservations > 0 {
		return core.ErrorDecision(core.StateConflictError(fmt.Sprintf(
			"item %s is in circulation: %d loans, %d held units, %d reservations",
			command.ItemID, loans, len(item.RequestUnits), activeReservations,
		)))
	}

	return core.SuccessDecision(
		core.ItemArchived{
			ItemID:     command.ItemID,
			Reason:     command.Reason,
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
