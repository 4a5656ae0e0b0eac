package registerdigitalborrow

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to register a digital lease.
// The payment behind TransactionRef must have been verified as settled before.
//
// Business Rules:
//
//	GIVEN: A patron in good standing without an Active lease on the resource
//	WHEN: RegisterDigitalBorrow command is received
//	THEN: DigitalBorrowRegistered expiring after the default borrow duration
//	ERROR: NotFound if the patron is not registered
//	ERROR: Eligibility if the card is deactivated or the patron is suspended
//	ERROR: StateConflict if the patron already has an Active lease on the resource
//	IDEMPOTENCY: If the borrow id is already registered, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult {
	if core.ProjectDigitalBorrow(history, command.BorrowID).Exists() {
		return core.IdempotentDecision()
	}

	if err := core.ProjectPatron(history, command.PatronID).CheckStanding(); err != nil {
		return core.ErrorDecision(err)
	}

	if active, found := core.ActiveDigitalBorrow(history, command.ResourceID, command.PatronID); found {
		return core.ErrorDecision(core.StateConflictError("patron already has active lease " + active.BorrowID + " on the resource"))
	}

	return core.SuccessDecision(core.DigitalBorrowRegistered{
		BorrowID:       command.BorrowID,
		ResourceID:     command.ResourceID,
		PatronID:       command.PatronID,
		TransactionRef: command.TransactionRef,
		ExpiryDate:     core.ToOccurredAt(command.OccurredAt.Add(policy.DigitalBorrowDuration())),
		OccurredAt:     command.OccurredAt,
	})
}

// BuildEventFilter creates the filter for querying the patron's events and those of the lease.
func BuildEventFilter(patronID core.PatronIDString, borrowID core.BorrowIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(
			eventstore.P("PatronID", patronID),
			eventstore.P("BorrowID", borrowID),
		).
		Finalize()
}
