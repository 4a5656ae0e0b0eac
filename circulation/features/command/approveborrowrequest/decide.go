package approveborrowrequest

import (
	"fmt"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to approve a borrow request.
//
// Business Rules:
//
//	GIVEN: A Pending request that has not expired and holds at least one unit
//	WHEN: ApproveBorrowRequest command is received with exactly one copy per held item
//	THEN: InstanceAssignedToRequest per held item (copy leaves the shelf) and BorrowRequestApproved
//	ERROR: NotFound if the request or an assigned copy is unknown
//	ERROR: StateConflict if the request is not Pending, has expired, holds nothing,
//	       the assignments do not match the held items or a copy is not on the shelf
//	IDEMPOTENCY: If the request is already Approved, no events are generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	request := core.ProjectRequest(history, command.RequestID)

	switch {
	case !request.Exists():
		return core.ErrorDecision(core.NotFoundError("borrow request " + command.RequestID))
	case request.Status == core.RequestStatusApproved:
		return core.IdempotentDecision()
	case request.Status != core.RequestStatusPending:
		return core.ErrorDecision(core.StateConflictError("borrow request is " + string(request.Status)))
	case request.IsPastExpiration(command.OccurredAt):
		return core.ErrorDecision(core.StateConflictError("borrow request has expired"))
	}

	held := request.HeldItemIDs()

	if len(held) == 0 {
		return core.ErrorDecision(core.StateConflictError("borrow request holds no items to approve"))
	}

	if len(command.Assignments) != len(held) {
		return core.ErrorDecision(core.StateConflictError(fmt.Sprintf(
			"%d assignments given for %d held items", len(command.Assignments), len(held),
		)))
	}

	events := make(core.DomainEvents, 0, len(held)+1)

	for _, itemID := range held {
		instanceID, assigned := command.Assignments[itemID]
		if !assigned {
			return core.ErrorDecision(core.StateConflictError("no copy assigned for item " + itemID))
		}

		item := core.ProjectItem(history, itemID)

		instance, found := item.Instance(instanceID)
		if !found {
			return core.ErrorDecision(core.NotFoundError("copy " + instanceID + " of item " + itemID))
		}

		if instance.Status != core.InstanceInShelf {
			return core.ErrorDecision(core.StateConflictError("copy " + instanceID + " is " + string(instance.Status)))
		}

		events = append(events, core.InstanceAssignedToRequest{
			RequestID:  command.RequestID,
			PatronID:   request.PatronID,
			ItemID:     itemID,
			InstanceID: instanceID,
			OccurredAt: command.OccurredAt,
		})
	}

	events = append(events, core.BorrowRequestApproved{
		RequestID:  command.RequestID,
		PatronID:   request.PatronID,
		OccurredAt: command.OccurredAt,
	})

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
