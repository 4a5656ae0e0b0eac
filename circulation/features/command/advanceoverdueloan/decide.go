package advanceoverdueloan

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic of the overdue sweep for one loan.
//
// Business Rules:
//
//	GIVEN: An active loan
//	WHEN: AdvanceOverdueLoan command is received
//	THEN: LoanMarkedOverdue once the due date has passed
//	THEN: LoanMarkedLost (borrowed -> none) and a Lost FineAssessed once the loan is overdue
//	      for the lost threshold; a Borrowing loan is marked overdue first in the same append
//	ERROR: NotFound if the loan is unknown
//	ERROR: PolicyResolution if no lost fine policy is configured
//	IDEMPOTENCY: If the loan is not yet due, already in the target status or has ended, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult {
	item, loan, found := core.LocateLoan(history, command.DetailID)

	if !found {
		return core.ErrorDecision(core.NotFoundError("loan " + command.DetailID))
	}

	if !loan.IsActive() {
		return core.IdempotentDecision()
	}

	if err := item.CheckIntegrity(); err != nil {
		return core.ErrorDecision(err)
	}

	now := command.OccurredAt
	events := core.DomainEvents{}

	if loan.Status == core.LoanBorrowing && now.After(loan.DueDate) {
		events = append(events, core.LoanMarkedOverdue{
			DetailID:   loan.DetailID,
			PatronID:   loan.PatronID,
			ItemID:     loan.ItemID,
			DueDate:    loan.DueDate,
			OccurredAt: now,
		})
	}

	if !now.Before(loan.DueDate.Add(policy.OverdueOrLostAfter())) {
		assessment, err := core.AssessLost(policy.Fines, loan.EstimatedPrice)
		if err != nil {
			return core.ErrorDecision(err)
		}

		events = append(events,
			core.LoanMarkedLost{
				DetailID:   loan.DetailID,
				PatronID:   loan.PatronID,
				ItemID:     loan.ItemID,
				InstanceID: loan.InstanceID,
				Movement:   core.Move(core.BucketBorrowed, core.BucketNone),
				OccurredAt: now,
			},
			core.FineAssessed{
				FineID:       core.FineIDFor(loan.DetailID, core.FineKindLost),
				DetailID:     loan.DetailID,
				PatronID:     loan.PatronID,
				ItemID:       loan.ItemID,
				Kind:         core.FineKindLost,
				FinePolicyID: assessment.PolicyID,
				Amount:       assessment.Amount,
				OccurredAt:   now,
			},
		)
	}

	if len(events) == 0 {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(events...)
}

// BuildEventFilter creates the filter for querying all events of the item.
func BuildEventFilter(itemID core.ItemIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", itemID)).
		Finalize()
}
