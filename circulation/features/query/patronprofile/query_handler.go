package patronprofile

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// EventStore defines the interface needed by the QueryHandler for event store operations.
type EventStore interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

// QueryHandler runs Query -> Unmarshal -> Project.
type QueryHandler struct {
	eventStore EventStore
}

// NewQueryHandler creates a new QueryHandler with the provided EventStore dependency.
func NewQueryHandler(eventStore EventStore) QueryHandler {
	return QueryHandler{
		eventStore: eventStore,
	}
}

// Handle executes the query. An unregistered patron is reported as NotFound.
func (h QueryHandler) Handle(ctx context.Context, query Query) (PatronProfile, error) {
	storableEvents, _, err := h.eventStore.Query(ctx, BuildEventFilter(query.PatronID))
	if err != nil {
		return PatronProfile{}, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return PatronProfile{}, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	profile := Project(history, query)
	if !profile.Registered {
		return PatronProfile{}, core.NotFoundError("patron " + query.PatronID)
	}

	return profile, nil
}
