package deactivatecard

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to deactivate a library card.
//
// Business Rules:
//
//	GIVEN: A registered patron with an active card
//	WHEN: DeactivateLibraryCard command is received
//	THEN: LibraryCardDeactivated is generated; the patron can no longer request, reserve or borrow
//	ERROR: NotFound if the patron is not registered
//	IDEMPOTENCY: If the card is already inactive, no event is generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	patron := core.ProjectPatron(history, command.PatronID)

	if !patron.Registered {
		return core.ErrorDecision(core.NotFoundError("patron " + command.PatronID))
	}

	if !patron.CardActive {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.LibraryCardDeactivated{
			PatronID:   command.PatronID,
			Reason:     command.Reason,
			OccurredAt: command.OccurredAt,
		},
	)
}

// BuildEventFilter creates the filter for querying all events of the patron.
func BuildEventFilter(patronID core.PatronIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("PatronID", patronID)).
		Finalize()
}
