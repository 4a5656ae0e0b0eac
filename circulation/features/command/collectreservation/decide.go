package collectreservation

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to collect an assigned reservation.
//
// Business Rules:
//
//	GIVEN: An Assigned reservation holding the code, within its pickup window,
//	       and a patron in good standing with room for one more loan
//	WHEN: CollectReservation command is received
//	THEN: ItemCheckedOut (reserved -> borrowed) and ReservationCollected
//	ERROR: NotFound if no reservation was ever assigned with the code
//	ERROR: StateConflict if the reservation is no longer Assigned or the pickup window has passed
//	ERROR: Eligibility if standing or limit fail
//	IDEMPOTENCY: If the reservation was already collected, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult {
	assigned, found := findAssignment(history, command.ReservationCode)
	if !found {
		return core.ErrorDecision(core.NotFoundError("reservation code " + command.ReservationCode))
	}

	item := core.ProjectItem(history, assigned.ItemID)
	reservation, _ := item.Reservation(assigned.ReservationID)

	switch {
	case reservation.Status == core.ReservationStatusCollected:
		return core.IdempotentDecision()
	case reservation.Status != core.ReservationStatusAssigned || reservation.ReservationCode != command.ReservationCode:
		return core.ErrorDecision(core.StateConflictError("reservation is " + string(reservation.Status)))
	case command.OccurredAt.After(reservation.ExpiryDate):
		return core.ErrorDecision(core.StateConflictError("pickup window has passed"))
	}

	if err := item.CheckIntegrity(); err != nil {
		return core.ErrorDecision(err)
	}

	patron := core.ProjectPatron(history, reservation.PatronID)

	if err := patron.CheckStanding(); err != nil {
		return core.ErrorDecision(err)
	}

	if err := patron.CheckBorrowLimit(1, policy.BorrowAmountOnceTime); err != nil {
		return core.ErrorDecision(err)
	}

	instance, _ := item.Instance(reservation.InstanceID)
	detailID := core.DetailIDFor(command.RecordID, instance.InstanceID)

	return core.SuccessDecision(
		core.ItemCheckedOut{
			RecordID:       command.RecordID,
			DetailID:       detailID,
			PatronID:       reservation.PatronID,
			ItemID:         item.ItemID,
			InstanceID:     instance.InstanceID,
			ReservationID:  reservation.ReservationID,
			ConditionGrade: instance.ConditionGrade,
			EstimatedPrice: instance.EstimatedPrice,
			DueDate:        core.ToOccurredAt(command.OccurredAt.Add(policy.LoanPeriod)),
			Movement:       core.Move(core.BucketReserved, core.BucketBorrowed),
			OccurredAt:     command.OccurredAt,
		},
		core.ReservationCollected{
			ReservationID: reservation.ReservationID,
			PatronID:      reservation.PatronID,
			ItemID:        item.ItemID,
			DetailID:      detailID,
			OccurredAt:    command.OccurredAt,
		},
	)
}

// findAssignment prefers a reservation that still holds the code over older ones
// that used the same code before it was reissued.
func findAssignment(history core.DomainEvents, code string) (core.ReservationAssigned, bool) {
	var latest core.ReservationAssigned

	found := false

	for i := len(history) - 1; i >= 0; i-- {
		e, ok := history[i].(core.ReservationAssigned)
		if !ok || e.ReservationCode != code {
			continue
		}

		if !found {
			latest, found = e, true
		}

		reservation, _ := core.ProjectItem(history, e.ItemID).Reservation(e.ReservationID)
		if reservation.Status == core.ReservationStatusAssigned && reservation.ReservationCode == code {
			return e, true
		}
	}

	return latest, found
}

// BuildEventFilter creates the filter for querying the events of the item and the patron.
func BuildEventFilter(itemID core.ItemIDString, patronID core.PatronIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", itemID), eventstore.P("PatronID", patronID)).
		Finalize()
}
