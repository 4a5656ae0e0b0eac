package returnitem

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to return a borrowed copy.
//
// Business Rules:
//
//	GIVEN: A Borrowing or Overdue loan and a known return condition
//	WHEN: ReturnItem command is received
//	THEN: ItemReturned moves the unit out of borrowed:
//	      - to none if the copy is no longer usable
//	      - to reserved and ReservationAssigned for the queue head if somebody waits
//	      - to available otherwise
//	THEN: FineAssessed for a late return and for a condition worse than at pickup
//	ERROR: NotFound if the loan is unknown
//	ERROR: StateConflict if the loan was declared lost or a queue head waits and no code was issued
//	ERROR: PolicyResolution if a grade or fine policy cannot be resolved
//	IDEMPOTENCY: If the loan is already Returned, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult { //nolint:funlen
	item, loan, found := core.LocateLoan(history, command.DetailID)

	switch {
	case !found:
		return core.ErrorDecision(core.NotFoundError("loan " + command.DetailID))
	case loan.Status == core.LoanReturned:
		return core.IdempotentDecision()
	case loan.Status == core.LoanLost:
		return core.ErrorDecision(core.StateConflictError("loan was declared lost"))
	}

	if err := item.CheckIntegrity(); err != nil {
		return core.ErrorDecision(err)
	}

	atReturn, err := policy.ConditionGrade(command.ReturnCondition)
	if err != nil {
		return core.ErrorDecision(err)
	}

	atPickup, err := policy.ConditionGrade(loan.ConditionAtPickup)
	if err != nil {
		return core.ErrorDecision(err)
	}

	now := command.OccurredAt
	returned := core.ItemReturned{
		DetailID:        loan.DetailID,
		RecordID:        loan.RecordID,
		PatronID:        loan.PatronID,
		ItemID:          loan.ItemID,
		InstanceID:      loan.InstanceID,
		ReturnCondition: atReturn.Code,
		ConditionImages: command.ConditionImages,
		ReturnedLate:    now.After(loan.DueDate),
		Movement:        core.Move(core.BucketBorrowed, core.BucketAvailable),
		OccurredAt:      now,
	}

	events := core.DomainEvents{}

	switch assigned, waiting := core.AssignQueueHead(item, policy, "", loan.InstanceID, command.ReservationCode, core.NoMovement(), now); {
	case !atReturn.Usable:
		returned.Movement = core.Move(core.BucketBorrowed, core.BucketNone)
		events = append(events, returned)
	case waiting:
		if command.ReservationCode == "" {
			return core.ErrorDecision(core.StateConflictError("a reservation code is required to hand the copy to the queue"))
		}

		returned.Movement = core.Move(core.BucketBorrowed, core.BucketReserved)
		events = append(events, returned, assigned)
	default:
		events = append(events, returned)
	}

	if returned.ReturnedLate {
		assessment, err := core.AssessOverdue(policy.Fines, loan.EstimatedPrice, loan.DueDate, now)
		if err != nil {
			return core.ErrorDecision(err)
		}

		events = appendFine(events, loan, assessment, now)
	}

	if atReturn.Rank < atPickup.Rank {
		assessment, err := core.AssessDamage(policy.Fines, loan.EstimatedPrice, atPickup, atReturn)
		if err != nil {
			return core.ErrorDecision(err)
		}

		events = appendFine(events, loan, assessment, now)
	}

	return core.SuccessDecision(events...)
}

func appendFine(events core.DomainEvents, loan core.LoanState, assessment core.FineAssessment, now core.OccurredAtTS) core.DomainEvents {
	if assessment.Amount <= 0 {
		return events
	}

	return append(events, core.FineAssessed{
		FineID:       core.FineIDFor(loan.DetailID, assessment.Kind),
		DetailID:     loan.DetailID,
		PatronID:     loan.PatronID,
		ItemID:       loan.ItemID,
		Kind:         assessment.Kind,
		FinePolicyID: assessment.PolicyID,
		Amount:       assessment.Amount,
		OccurredAt:   now,
	})
}

// BuildEventFilter creates the filter for querying all events of the item.
func BuildEventFilter(itemID core.ItemIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", itemID)).
		Finalize()
}
