package selfcheckout

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic for a walk-in checkout.
//
// Business Rules:
//
//	GIVEN: A patron in good standing within the borrow limit and shelf copies of active items
//	WHEN: SelfCheckout command is received
//	THEN: ItemCheckedOut per copy (available -> borrowed, due after the loan period)
//	      and ReservationCancelled for a Pending reservation of the patron on that item
//	ERROR: NotFound if the patron, an item or a copy is unknown
//	ERROR: Eligibility if standing or limit fail, or the patron holds a request unit or an
//	       Assigned reservation for the item
//	ERROR: StateConflict if a copy is not on the shelf, an item is listed twice or no unit is available
//	ERROR: ReservationConflict if all available units are claimed by other patrons' reservations
//	IDEMPOTENCY: If the borrow record was already checked out, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult { //nolint:funlen
	if len(command.Copies) > 0 {
		first := command.Copies[0]
		detailID := core.DetailIDFor(command.RecordID, first.InstanceID)

		if _, found := core.ProjectItem(history, first.ItemID).Loan(detailID); found {
			return core.IdempotentDecision()
		}
	}

	patron := core.ProjectPatron(history, command.PatronID)

	if err := patron.CheckStanding(); err != nil {
		return core.ErrorDecision(err)
	}

	if len(command.Copies) == 0 {
		return core.ErrorDecision(core.EligibilityError("nothing to check out"))
	}

	if err := patron.CheckBorrowLimit(len(command.Copies), policy.BorrowAmountOnceTime); err != nil {
		return core.ErrorDecision(err)
	}

	dueDate := core.ToOccurredAt(command.OccurredAt.Add(policy.LoanPeriod))
	seen := make(map[core.ItemIDString]bool, len(command.Copies))
	events := make(core.DomainEvents, 0, len(command.Copies))

	for _, cp := range command.Copies {
		if seen[cp.ItemID] {
			return core.ErrorDecision(core.StateConflictError("item " + cp.ItemID + " is listed twice"))
		}
		seen[cp.ItemID] = true

		item := core.ProjectItem(history, cp.ItemID)
		if err := core.CheckActiveItem(item); err != nil {
			return core.ErrorDecision(err)
		}

		instance, found := item.Instance(cp.InstanceID)
		if !found {
			return core.ErrorDecision(core.NotFoundError("copy " + cp.InstanceID + " of item " + cp.ItemID))
		}

		if instance.Status != core.InstanceInShelf {
			return core.ErrorDecision(core.StateConflictError("copy " + cp.InstanceID + " is " + string(instance.Status)))
		}

		if patron.HasActiveRequestFor(cp.ItemID) {
			return core.ErrorDecision(core.EligibilityError("a unit of item " + cp.ItemID + " is held for a request of the patron"))
		}

		if holdsAssignedReservation(item, command.PatronID) {
			return core.ErrorDecision(core.EligibilityError("a copy of item " + cp.ItemID + " is waiting for pickup by the patron"))
		}

		if item.Inventory.Available() <= 0 {
			return core.ErrorDecision(core.StateConflictError("no unit of item " + cp.ItemID + " is available"))
		}

		if item.EffectiveAvailability(command.PatronID) <= 0 {
			return core.ErrorDecision(core.ReservationConflictError("item " + cp.ItemID + " is reserved for other patrons"))
		}

		events = append(events, core.ItemCheckedOut{
			RecordID:       command.RecordID,
			DetailID:       core.DetailIDFor(command.RecordID, cp.InstanceID),
			PatronID:       command.PatronID,
			ItemID:         cp.ItemID,
			InstanceID:     cp.InstanceID,
			ConditionGrade: instance.ConditionGrade,
			EstimatedPrice: instance.EstimatedPrice,
			DueDate:        dueDate,
			Movement:       core.Move(core.BucketAvailable, core.BucketBorrowed),
			OccurredAt:     command.OccurredAt,
		})

		for _, r := range item.Reservations {
			if r.PatronID == command.PatronID && r.Status == core.ReservationStatusPending {
				events = append(events, core.ReservationCancelled{
					ReservationID: r.ReservationID,
					PatronID:      command.PatronID,
					ItemID:        cp.ItemID,
					Reason:        "fulfilled by checkout",
					Movement:      core.NoMovement(),
					OccurredAt:    command.OccurredAt,
				})
			}
		}
	}

	return core.SuccessDecision(events...)
}

func holdsAssignedReservation(item core.ItemState, patronID core.PatronIDString) bool {
	for _, r := range item.Reservations {
		if r.PatronID == patronID && r.Status == core.ReservationStatusAssigned {
			return true
		}
	}

	return false
}

// BuildEventFilter creates the filter for querying the events of the patron and the items.
func BuildEventFilter(patronID core.PatronIDString, itemIDs []core.ItemIDString) eventstore.Filter {
	predicates := make([]eventstore.FilterPredicate, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		predicates = append(predicates, eventstore.P("ItemID", itemID))
	}

	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("PatronID", patronID), predicates...).
		Finalize()
}
