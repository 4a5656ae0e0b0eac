package expireborrowrequest

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to expire a borrow request.
//
// Business Rules:
//
//	GIVEN: A Pending or Approved request past its ExpirationDate
//	WHEN: ExpireBorrowRequest command is received
//	THEN: BorrowRequestExpired and ItemRequestReleased for every held unit
//	ERROR: NotFound if the request is unknown
//	ERROR: StateConflict if the request has not expired yet
//	IDEMPOTENCY: If the request is no longer active, no events are generated
//
// Auto-reservations of the request stay in their queues.
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	request := core.ProjectRequest(history, command.RequestID)

	if !request.Exists() {
		return core.ErrorDecision(core.NotFoundError("borrow request " + command.RequestID))
	}

	if !request.IsActive() {
		return core.IdempotentDecision()
	}

	if !request.IsPastExpiration(command.OccurredAt) {
		return core.ErrorDecision(core.StateConflictError("borrow request has not expired yet"))
	}

	events := core.DomainEvents{
		core.BorrowRequestExpired{
			RequestID:  command.RequestID,
			PatronID:   request.PatronID,
			OccurredAt: command.OccurredAt,
		},
	}

	return core.SuccessDecision(append(events, core.ReleaseHeldItems(request, command.OccurredAt)...)...)
}

// BuildEventFilter creates the filter for querying the events of the request and its items.
func BuildEventFilter(requestID core.RequestIDString, itemIDs []core.ItemIDString) eventstore.Filter {
	predicates := make([]eventstore.FilterPredicate, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		predicates = append(predicates, eventstore.P("ItemID", itemID))
	}

	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("RequestID", requestID), predicates...).
		Finalize()
}
