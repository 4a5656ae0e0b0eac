package extendborrow

import (
	"fmt"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to extend a loan.
//
// Business Rules:
//
//	GIVEN: A Borrowing loan that is not yet due, below the extension maximum,
//	       on an item nobody else has an active reservation for
//	WHEN: ExtendBorrow command is received
//	THEN: LoanExtended moves the due date by one extension period
//	ERROR: NotFound if the loan is unknown
//	ERROR: StateConflict if the loan is not Borrowing or already past due
//	ERROR: Eligibility if the maximum number of extensions is reached
//	ERROR: ReservationConflict if another patron waits for the item
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult {
	item, loan, found := core.LocateLoan(history, command.DetailID)

	switch {
	case !found:
		return core.ErrorDecision(core.NotFoundError("loan " + command.DetailID))
	case loan.Status != core.LoanBorrowing:
		return core.ErrorDecision(core.StateConflictError("loan is " + string(loan.Status)))
	case command.OccurredAt.After(loan.DueDate):
		return core.ErrorDecision(core.StateConflictError("loan is past its due date"))
	case loan.TotalExtension >= policy.MaxBorrowExtension:
		return core.ErrorDecision(core.EligibilityError(fmt.Sprintf("loan was already extended %d times", loan.TotalExtension)))
	case item.HasActiveReservationByOthers(loan.PatronID):
		return core.ErrorDecision(core.ReservationConflictError("item " + item.ItemID + " is reserved by another patron"))
	}

	return core.SuccessDecision(core.LoanExtended{
		DetailID:        loan.DetailID,
		PatronID:        loan.PatronID,
		ItemID:          loan.ItemID,
		ExtensionNumber: loan.TotalExtension + 1,
		PreviousDueDate: loan.DueDate,
		NewDueDate:      core.ToOccurredAt(loan.DueDate.Add(policy.ExtensionPeriod)),
		OccurredAt:      command.OccurredAt,
	})
}

// BuildEventFilter creates the filter for querying all events of the item.
func BuildEventFilter(itemID core.ItemIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", itemID)).
		Finalize()
}
