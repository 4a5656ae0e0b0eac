package expiredigitalborrow

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to expire a digital lease that has run out.
//
// Business Rules:
//
//	GIVEN: An Active lease whose expiry date has passed
//	WHEN: ExpireDigitalBorrow command is received
//	THEN: DigitalBorrowExpired
//	ERROR: NotFound if the lease is unknown
//	ERROR: StateConflict if the lease has not run out yet
//	IDEMPOTENCY: If the lease is no longer Active, no events are generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	lease := core.ProjectDigitalBorrow(history, command.BorrowID)

	if !lease.Exists() {
		return core.ErrorDecision(core.NotFoundError("digital borrow " + command.BorrowID))
	}

	if lease.Status != core.DigitalBorrowStatusActive {
		return core.IdempotentDecision()
	}

	if command.OccurredAt.Before(lease.ExpiryDate) {
		return core.ErrorDecision(core.StateConflictError("digital borrow runs until " + lease.ExpiryDate.Format("2006-01-02 15:04")))
	}

	return core.SuccessDecision(core.DigitalBorrowExpired{
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
