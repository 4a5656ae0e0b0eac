package cancelreservation

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to cancel a reservation.
//
// Business Rules:
//
//	GIVEN: A Pending reservation, or an Assigned one cancelled by staff
//	WHEN: CancelReservation command is received
//	THEN: ReservationCancelled; the copy of an Assigned reservation goes to the next entry
//	      (ReservationAssigned) or back to available
//	ERROR: NotFound if the reservation is unknown
//	ERROR: StateConflict if the reservation was collected or expired, or is Assigned without staff override
//	IDEMPOTENCY: If the reservation is already Cancelled, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult {
	item, reservation, found := core.LocateReservation(history, command.ReservationID)

	if !found {
		return core.ErrorDecision(core.NotFoundError("reservation " + command.ReservationID))
	}

	cancelled := core.ReservationCancelled{
		ReservationID: reservation.ReservationID,
		PatronID:      reservation.PatronID,
		ItemID:        reservation.ItemID,
		Reason:        command.Reason,
		StaffOverride: command.StaffOverride,
		Movement:      core.NoMovement(),
		OccurredAt:    command.OccurredAt,
	}

	switch reservation.Status {
	case core.ReservationStatusCancelled:
		return core.IdempotentDecision()

	case core.ReservationStatusPending:
		return core.SuccessDecision(cancelled)

	case core.ReservationStatusAssigned:
		if !command.StaffOverride {
			return core.ErrorDecision(core.StateConflictError("an assigned reservation can only be cancelled by staff"))
		}

		if err := item.CheckIntegrity(); err != nil {
			return core.ErrorDecision(err)
		}

		movement, handOff, err := core.HandOffOrRelease(item, policy, reservation, command.ReservationCode, command.OccurredAt)
		if err != nil {
			return core.ErrorDecision(err)
		}

		cancelled.Movement = movement

		return core.SuccessDecision(append(core.DomainEvents{cancelled}, handOff...)...)

	default:
		return core.ErrorDecision(core.StateConflictError("reservation is " + string(reservation.Status)))
	}
}

// BuildEventFilter creates the filter for querying all events of the item.
func BuildEventFilter(itemID core.ItemIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", itemID)).
		Finalize()
}
