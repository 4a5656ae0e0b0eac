package registerpatron

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Decide registers the patron unless already registered (idempotent).
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	if core.ProjectPatron(history, command.PatronID).Registered {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.PatronRegistered{
			PatronID:   command.PatronID,
			Name:       command.Name,
			Locale:     command.Locale,
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
