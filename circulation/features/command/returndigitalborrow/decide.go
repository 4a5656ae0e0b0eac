package returndigitalborrow

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to return a digital lease early.
//
// Business Rules:
//
//	GIVEN: An Active lease
//	WHEN: ReturnDigitalBorrow command is received
//	THEN: DigitalBorrowReturned
//	ERROR: NotFound if the lease is unknown
//	ERROR: StateConflict if the lease has expired
//	IDEMPOTENCY: If the lease was already returned, no events are generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	lease := core.ProjectDigitalBorrow(history, command.BorrowID)

	switch lease.Status {
	case core.DigitalBorrowStatusUnknown:
		return core.ErrorDecision(core.NotFoundError("digital borrow " + command.BorrowID))
	case core.DigitalBorrowStatusReturned:
		return core.IdempotentDecision()
	case core.DigitalBorrowStatusExpired:
		return core.ErrorDecision(core.StateConflictError("digital borrow has expired"))
	}

	return core.SuccessDecision(core.DigitalBorrowReturned{
		BorrowID:   lease.BorrowID,
		ResourceID: lease.ResourceID,
		PatronID:   lease.PatronID,
		OccurredAt: command.OccurredAt,
	})
}

// BuildEventFilter creates the filter for querying all events of the lease.
func BuildEventFilter(borrowID core.BorrowIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("BorrowID", borrowID)).
		Finalize()
}
