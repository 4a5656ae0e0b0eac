package submitborrowrequest

import (
	"slices"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide implements the business logic to submit a borrow request.
//
// Business Rules:
//
//	GIVEN: A patron in good standing and a list of distinct, Active items
//	WHEN: SubmitBorrowRequest command is received
//	THEN: BorrowRequestSubmitted (Pending, expires after RequestExpiry) is generated, plus per item
//	      - ItemRequested (available -> requested) if its effective availability is positive
//	      - ReservationPlaced with ReservedAfterRequestFailed and a forecast otherwise
//	ERROR: NotFound if the patron is not registered or an item is unknown or archived
//	ERROR: Eligibility if the card is inactive, the patron is suspended, the borrow limit would
//	       be exceeded, an item is listed twice or the patron already requested or reserved it
//	IDEMPOTENCY: If the request was already submitted, no events are generated
func Decide(history core.DomainEvents, command Command, policy core.CirculationPolicy) core.DecisionResult { //nolint:funlen
	if core.ProjectRequest(history, command.RequestID).Exists() {
		return core.IdempotentDecision()
	}

	if len(command.ItemIDs) == 0 {
		return core.ErrorDecision(core.EligibilityError("a borrow request needs at least one item"))
	}

	patron := core.ProjectPatron(history, command.PatronID)

	if err := patron.CheckStanding(); err != nil {
		return core.ErrorDecision(err)
	}

	if err := patron.CheckBorrowLimit(len(command.ItemIDs), policy.BorrowAmountOnceTime); err != nil {
		return core.ErrorDecision(err)
	}

	events := core.DomainEvents{
		core.BorrowRequestSubmitted{
			RequestID:      command.RequestID,
			PatronID:       command.PatronID,
			ItemIDs:        slices.Clone(command.ItemIDs),
			RequestType:    command.RequestType,
			Locale:         command.Locale,
			ExpirationDate: core.ToOccurredAt(command.OccurredAt.Add(policy.RequestExpiry)),
			OccurredAt:     command.OccurredAt,
		},
	}

	for i, itemID := range command.ItemIDs {
		if slices.Contains(command.ItemIDs[:i], itemID) {
			return core.ErrorDecision(core.EligibilityError("item " + itemID + " is listed twice"))
		}

		item := core.ProjectItem(history, itemID)

		if err := core.CheckActiveItem(item); err != nil {
			return core.ErrorDecision(err)
		}

		if patron.HasActiveRequestFor(itemID) || patron.HasActiveReservationFor(itemID) {
			return core.ErrorDecision(core.EligibilityError("patron already requested or reserved item " + itemID))
		}

		if item.EffectiveAvailability(command.PatronID) > 0 {
			events = append(events, core.ItemRequested{
				RequestID:  command.RequestID,
				PatronID:   command.PatronID,
				ItemID:     itemID,
				Movement:   core.Move(core.BucketAvailable, core.BucketRequested),
				OccurredAt: command.OccurredAt,
			})

			continue
		}

		forecast := item.Forecast()
		events = append(events, core.ReservationPlaced{
			ReservationID:              core.ReservationIDFor(command.RequestID, itemID),
			PatronID:                   command.PatronID,
			ItemID:                     itemID,
			RequestID:                  command.RequestID,
			ReservedAfterRequestFailed: true,
			ExpectedAvailableMin:       forecast.ExpectedAvailableMin,
			ExpectedAvailableMax:       forecast.ExpectedAvailableMax,
			OccurredAt:                 command.OccurredAt,
		})
	}

	return core.SuccessDecision(events...)
}

// BuildEventFilter creates the filter for querying all events of the request, the patron and
// every requested item. Concurrent writers on any of them conflict with this command.
func BuildEventFilter(requestID core.RequestIDString, patronID core.PatronIDString, itemIDs []core.ItemIDString) eventstore.Filter {
	predicates := make([]eventstore.FilterPredicate, 0, len(itemIDs)+1)
	predicates = append(predicates, eventstore.P("RequestID", requestID))

	for _, itemID := range itemIDs {
		predicates = append(predicates, eventstore.P("ItemID", itemID))
	}

	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("PatronID", patronID), predicates...).
		Finalize()
}
