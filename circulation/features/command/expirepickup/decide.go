package expirepickup

import (
	"fmt"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to expire a missed pickup.
//
// Business Rules:
//
//	GIVEN: An Assigned reservation past its pickup ExpiryDate
//	WHEN: ExpirePickup command is received
//	THEN: ReservationPickupExpired; the copy goes to the next entry (ReservationAssigned) or back to available
//	THEN: PatronSuspended once the patron's missed pickups reach the allowed total
//	ERROR: NotFound if the reservation is unknown
//	ERROR: StateConflict if the pickup window is still open
//	IDEMPOTENCY: If the reservation is not Assigned, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult {
	item, reservation, found := core.LocateReservation(history, command.ReservationID)

	switch {
	case !found:
		return core.ErrorDecision(core.NotFoundError("reservation " + command.ReservationID))
	case reservation.Status != core.ReservationStatusAssigned:
		return core.IdempotentDecision()
	case !command.OccurredAt.After(reservation.ExpiryDate):
		return core.ErrorDecision(core.StateConflictError("pickup window is still open"))
	}

	if err := item.CheckIntegrity(); err != nil {
		return core.ErrorDecision(err)
	}

	movement, handOff, err := core.HandOffOrRelease(item, policy, reservation, command.ReservationCode, command.OccurredAt)
	if err != nil {
		return core.ErrorDecision(err)
	}

	events := core.DomainEvents{
		core.ReservationPickupExpired{
			ReservationID: reservation.ReservationID,
			PatronID:      reservation.PatronID,
			ItemID:        reservation.ItemID,
			Movement:      movement,
			OccurredAt:    command.OccurredAt,
		},
	}
	events = append(events, handOff...)

	patron := core.ProjectPatron(history, reservation.PatronID)
	missed := patron.TotalMissedPickUp + 1

	if !patron.Suspended && missed >= policy.TotalMissedPickUpAllow {
		events = append(events, core.PatronSuspended{
			PatronID:          reservation.PatronID,
			Reason:            fmt.Sprintf("missed %d pickups", missed),
			TotalMissedPickUp: missed,
			OccurredAt:        command.OccurredAt,
		})
	}

	return core.SuccessDecision(events...)
}

// BuildEventFilter creates the filter for querying the events of the item and the patron.
func BuildEventFilter(itemID core.ItemIDString, patronID core.PatronIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", itemID), eventstore.P("PatronID", patronID)).
		Finalize()
}
