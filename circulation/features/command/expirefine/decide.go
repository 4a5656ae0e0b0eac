package expirefine

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to write off a fine.
//
// Business Rules:
//
//	GIVEN: An Unpaid fine
//	WHEN: ExpireFine command is received
//	THEN: FineExpired
//	ERROR: NotFound if the fine is unknown
//	ERROR: StateConflict if the fine was paid
//	IDEMPOTENCY: If the fine is already Expired, no events are generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	fine := core.ProjectFine(history, command.FineID)

	switch fine.Status {
	case core.FineStatusUnknown:
		return core.ErrorDecision(core.NotFoundError("fine " + command.FineID))
	case core.FineStatusExpired:
		return core.IdempotentDecision()
	case core.FineStatusPaid:
		return core.ErrorDecision(core.StateConflictError("fine is already paid"))
	}

	return core.SuccessDecision(core.FineExpired{
		FineID:     fine.FineID,
		PatronID:   fine.PatronID,
		Reason:     command.Reason,
		OccurredAt: command.OccurredAt,
	})
}

// BuildEventFilter creates the filter for querying all events of the fine.
func BuildEventFilter(fineID core.FineIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("FineID", fineID)).
		Finalize()
}
