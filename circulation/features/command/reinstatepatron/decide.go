package reinstatepatron

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide lifts a suspension and resets the missed pickup counter.
// A patron that is neither suspended nor has missed pickups needs no change.
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	patron := core.ProjectPatron(history, command.PatronID)

	if !patron.Registered {
		return core.ErrorDecision(core.NotFoundError("patron " + command.PatronID))
	}

	if !patron.Suspended && patron.TotalMissedPickUp == 0 {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.PatronReinstated{
			PatronID:   command.PatronID,
			OccurredAt: command.OccurredAt,
		},
	)
}

// BuildEventFilter creates the filter for querying all events of the patron.
func BuildEventFilter(patronID core.PatronIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("PatronID", patronID)).
		Finalize()
}
