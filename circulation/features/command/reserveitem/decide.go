package reserveitem

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to reserve an item.
//
// Business Rules:
//
//	GIVEN: A patron in good standing and an active item the patron neither borrows,
//	       holds a request unit for nor has reserved already
//	WHEN: ReserveItem command is received
//	THEN: ReservationPlaced with the availability forecast from the active loans
//	THEN: ReservationAssigned (available -> reserved) if a unit is free for the patron,
//	      a copy is on the shelf and a reservation code was issued
//	ERROR: NotFound if the patron or the item is unknown
//	ERROR: Eligibility if standing fails or the patron already borrows, requests or reserves the item
//	IDEMPOTENCY: If the reservation already exists, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult {
	item := core.ProjectItem(history, command.ItemID)

	if _, exists := item.Reservation(command.ReservationID); exists {
		return core.IdempotentDecision()
	}

	if err := core.ProjectPatron(history, command.PatronID).CheckStanding(); err != nil {
		return core.ErrorDecision(err)
	}

	if err := core.CheckActiveItem(item); err != nil {
		return core.ErrorDecision(err)
	}

	switch {
	case item.HasActiveReservationBy(command.PatronID):
		return core.ErrorDecision(core.EligibilityError("item " + command.ItemID + " is already reserved by the patron"))
	case item.HasActiveRequestBy(command.PatronID):
		return core.ErrorDecision(core.EligibilityError("a unit of item " + command.ItemID + " is held for a request of the patron"))
	case item.IsBorrowedBy(command.PatronID):
		return core.ErrorDecision(core.EligibilityError("item " + command.ItemID + " is borrowed by the patron"))
	}

	forecast := item.Forecast()
	events := core.DomainEvents{
		core.ReservationPlaced{
			ReservationID:        command.ReservationID,
			PatronID:             command.PatronID,
			ItemID:               command.ItemID,
			ExpectedAvailableMin: forecast.ExpectedAvailableMin,
			ExpectedAvailableMax: forecast.ExpectedAvailableMax,
			OccurredAt:           command.OccurredAt,
		},
	}

	shelf, onShelf := item.FirstInShelfInstance()

	if item.EffectiveAvailability(command.PatronID) > 0 && onShelf && command.ReservationCode != "" {
		events = append(events, core.ReservationAssigned{
			ReservationID:   command.ReservationID,
			PatronID:        command.PatronID,
			ItemID:          command.ItemID,
			InstanceID:      shelf.InstanceID,
			ReservationCode: command.ReservationCode,
			ExpiryDate:      core.ToOccurredAt(command.OccurredAt.Add(policy.PickupWindow)),
			Movement:        core.Move(core.BucketAvailable, core.BucketReserved),
			OccurredAt:      command.OccurredAt,
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
