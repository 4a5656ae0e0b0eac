package patronprofile

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Project builds the profile of the queried patron.
func Project(history core.DomainEvents, query Query) PatronProfile {
	patron := core.ProjectPatron(history, query.PatronID)

	return PatronProfile{
		PatronID:           query.PatronID,
		Name:               patron.Name,
		Locale:             patron.Locale,
		Registered:         patron.Registered,
		CardActive:         patron.CardActive,
		Suspended:          patron.Suspended,
		TotalMissedPickUp:  patron.TotalMissedPickUp,
		OutstandingLoans:   patron.OutstandingLoans(),
		HeldRequestItems:   patron.HeldRequestItems(),
		ActiveReservations: patron.ActiveReservations(),
		UnpaidFines:        patron.UnpaidFines(),
	}
}

// BuildEventFilter creates the filter for querying all events of the patron.
func BuildEventFilter(patronID core.PatronIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("PatronID", patronID)).
		Finalize()
}
