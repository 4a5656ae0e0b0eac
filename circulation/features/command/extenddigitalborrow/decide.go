package extenddigitalborrow

import (
	"fmt"
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// CheckExtendable verifies that the lease may be extended once more at now.
func CheckExtendable(lease core.DigitalBorrowState, now time.Time, policy core.CirculationPolicy) error {
	switch {
	case !lease.Exists():
		return core.NotFoundError("digital borrow " + lease.BorrowID)

	case lease.Status != core.DigitalBorrowStatusActive:
		return core.StateConflictError("digital borrow is " + string(lease.Status))

	case !now.Before(lease.ExpiryDate):
		return core.StateConflictError("digital borrow has run out")

	case len(lease.Extensions) >= policy.MaxDigitalExtensions:
		return core.EligibilityError(fmt.Sprintf("maximum of %d extensions reached", policy.MaxDigitalExtensions))
	}

	return nil
}

// Decide records a paid extension of a digital lease.
//
// Business Rules:
//
//	GIVEN: An Active lease that has not run out and has extensions left
//	WHEN: ExtendDigitalBorrow command is received with a collected fee
//	THEN: DigitalBorrowExtended moving the expiry date by one extension period
//	ERROR: NotFound if the lease is unknown
//	ERROR: StateConflict if the lease is not Active, has run out, or was extended concurrently
//	ERROR: Eligibility if the maximum number of extensions is reached
//	IDEMPOTENCY: If the extension with this transaction was already recorded, no events are generated
func Decide(history core.DomainEvents, command Command, charged Charged, policy core.CirculationPolicy) core.DecisionResult {
	lease := core.ProjectDigitalBorrow(history, command.BorrowID)

	for _, extension := range lease.Extensions {
		if extension.TransactionRef == charged.TransactionRef {
			return core.IdempotentDecision()
		}
	}

	if err := CheckExtendable(lease, command.OccurredAt, policy); err != nil {
		return core.ErrorDecision(err)
	}

	if len(lease.Extensions)+1 != charged.ExtensionNumber {
		return core.ErrorDecision(core.StateConflictError(
			fmt.Sprintf("charged for extension %d but lease has %d", charged.ExtensionNumber, len(lease.Extensions)),
		))
	}

	return core.SuccessDecision(core.DigitalBorrowExtended{
		BorrowID:        lease.BorrowID,
		ResourceID:      lease.ResourceID,
		PatronID:        lease.PatronID,
		TransactionRef:  charged.TransactionRef,
		Fee:             charged.Fee,
		ExtensionNumber: charged.ExtensionNumber,
		PreviousExpiry:  lease.ExpiryDate,
		NewExpiryDate:   core.ToOccurredAt(lease.ExpiryDate.Add(policy.DigitalExtension())),
		OccurredAt:      command.OccurredAt,
	})
}

// BuildEventFilter creates the filter for querying all events of the lease.
func BuildEventFilter(borrowID core.BorrowIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("BorrowID", borrowID)).
		Finalize()
}
