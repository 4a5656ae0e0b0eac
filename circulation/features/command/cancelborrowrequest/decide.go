package cancelborrowrequest

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to cancel a borrow request.
//
// Business Rules:
//
//	GIVEN: A Pending or Approved request
//	WHEN: CancelBorrowRequest command is received
//	THEN: BorrowRequestCancelled, ItemRequestReleased for every held unit (assigned copies go
//	      back to the shelf) and ReservationCancelled for every still Pending auto-reservation
//	ERROR: NotFound if the request is unknown
//	ERROR: StateConflict if the request was already fulfilled or has expired
//	IDEMPOTENCY: If the request is already Cancelled, no events are generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	request := core.ProjectRequest(history, command.RequestID)

	switch request.Status {
	case core.RequestStatusUnknown:
		return core.ErrorDecision(core.NotFoundError("borrow request " + command.RequestID))
	case core.RequestStatusCancelled:
		return core.IdempotentDecision()
	case core.RequestStatusFulfilled, core.RequestStatusExpired:
		return core.ErrorDecision(core.StateConflictError("borrow request is " + string(request.Status)))
	}

	events := core.DomainEvents{
		core.BorrowRequestCancelled{
			RequestID:  command.RequestID,
			PatronID:   request.PatronID,
			Reason:     command.Reason,
			OccurredAt: command.OccurredAt,
		},
	}

	events = append(events, core.ReleaseHeldItems(request, command.OccurredAt)...)

	for _, itemID := range request.ItemIDs {
		item := core.ProjectItem(history, itemID)

		for _, reservationID := range request.AutoReserved {
			reservation, found := item.Reservation(reservationID)
			if !found || reservation.Status != core.ReservationStatusPending {
				continue
			}

			events = append(events, core.ReservationCancelled{
				ReservationID: reservationID,
				PatronID:      request.PatronID,
				ItemID:        itemID,
				Reason:        "borrow request cancelled",
				Movement:      core.NoMovement(),
				OccurredAt:    command.OccurredAt,
			})
		}
	}

	return core.SuccessDecision(events...)
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
