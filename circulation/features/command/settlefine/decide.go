package settlefine

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// CheckPayable reports whether the fine still has to be charged.
// A paid fine needs no charge; an unknown or written-off fine cannot be paid.
func CheckPayable(fine core.FineState) (bool, error) {
	switch fine.Status {
	case core.FineStatusUnpaid:
		return true, nil
	case core.FineStatusPaid:
		return false, nil
	case core.FineStatusUnknown:
		return false, core.NotFoundError("fine " + fine.FineID)
	default:
		return false, core.StateConflictError("fine is " + string(fine.Status))
	}
}

// Decide records the payment of a fine that was charged with transactionRef.
//
// Business Rules:
//
//	GIVEN: An Unpaid fine and a completed charge
//	WHEN: SettleFine command is received
//	THEN: FinePaid carrying the transaction reference
//	ERROR: NotFound if the fine is unknown
//	ERROR: StateConflict if the fine was written off
//	IDEMPOTENCY: If the fine is already Paid, no events are generated
func Decide(history core.DomainEvents, command Command, transactionRef string) core.DecisionResult {
	fine := core.ProjectFine(history, command.FineID)

	payable, err := CheckPayable(fine)
	if err != nil {
		return core.ErrorDecision(err)
	}

	if !payable {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.FinePaid{
		FineID:         fine.FineID,
		PatronID:       fine.PatronID,
		Amount:         fine.Amount,
		TransactionRef: transactionRef,
		OccurredAt:     command.OccurredAt,
	})
}

// BuildEventFilter creates the filter for querying all events of the fine.
func BuildEventFilter(fineID core.FineIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("FineID", fineID)).
		Finalize()
}
