package checkoutrequest

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to check out an approved borrow request.
//
// Business Rules:
//
//	GIVEN: An Approved request that has not expired, a patron in good standing and an
//	       assigned copy for every held item
//	WHEN: CheckoutRequest command is received
//	THEN: ItemCheckedOut per held item (requested -> borrowed, due after the loan period)
//	      and BorrowRequestFulfilled carrying the borrow record
//	ERROR: NotFound if the request or the patron is unknown
//	ERROR: Eligibility if the card is inactive or the patron is suspended
//	ERROR: StateConflict if the request is not Approved, has expired or a copy is not assigned to it
//	IDEMPOTENCY: If the request is already Fulfilled, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult {
	request := core.ProjectRequest(history, command.RequestID)

	switch {
	case !request.Exists():
		return core.ErrorDecision(core.NotFoundError("borrow request " + command.RequestID))
	case request.Status == core.RequestStatusFulfilled:
		return core.IdempotentDecision()
	case request.Status != core.RequestStatusApproved:
		return core.ErrorDecision(core.StateConflictError("borrow request is " + string(request.Status)))
	case request.IsPastExpiration(command.OccurredAt):
		return core.ErrorDecision(core.StateConflictError("borrow request has expired"))
	}

	if err := core.ProjectPatron(history, request.PatronID).CheckStanding(); err != nil {
		return core.ErrorDecision(err)
	}

	if len(request.HeldItems) == 0 {
		return core.ErrorDecision(core.StateConflictError("borrow request holds no items"))
	}

	dueDate := core.ToOccurredAt(command.OccurredAt.Add(policy.LoanPeriod))
	events := make(core.DomainEvents, 0, len(request.HeldItems)+1)

	for _, held := range request.HeldItems {
		item := core.ProjectItem(history, held.ItemID)
		if err := item.CheckIntegrity(); err != nil {
			return core.ErrorDecision(err)
		}

		instance, found := item.Instance(held.InstanceID)
		if !found || instance.Status != core.InstanceOutOfShelf || instance.RequestID != command.RequestID {
			return core.ErrorDecision(core.StateConflictError("no copy of item " + held.ItemID + " is assigned to the request"))
		}

		events = append(events, core.ItemCheckedOut{
			RecordID:       command.RecordID,
			DetailID:       core.DetailIDFor(command.RecordID, instance.InstanceID),
			PatronID:       request.PatronID,
			ItemID:         held.ItemID,
			InstanceID:     instance.InstanceID,
			RequestID:      command.RequestID,
			ConditionGrade: instance.ConditionGrade,
			EstimatedPrice: instance.EstimatedPrice,
			DueDate:        dueDate,
			Movement:       core.Move(core.BucketRequested, core.BucketBorrowed),
			OccurredAt:     command.OccurredAt,
		})
	}

	events = append(events, core.BorrowRequestFulfilled{
		RequestID:  command.RequestID,
		PatronID:   request.PatronID,
		RecordID:   command.RecordID,
		OccurredAt: command.OccurredAt,
	})

	return core.SuccessDecision(events...)
}

// BuildEventFilter creates the filter for querying the events of the request, its patron and its items.
func BuildEventFilter(
	requestID core.RequestIDString,
	patronID core.PatronIDString,
	itemIDs []core.ItemIDString,
) eventstore.Filter {

	predicates := []eventstore.FilterPredicate{eventstore.P("PatronID", patronID)}
	for _, itemID := range itemIDs {
		predicates = append(predicates, eventstore.P("ItemID", itemID))
	}

	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("RequestID", requestID), predicates...).
		Finalize()
}
