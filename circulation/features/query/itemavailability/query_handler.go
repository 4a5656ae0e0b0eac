package itemavailability

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
	policy     core.CirculationPolicy
}

// NewQueryHandler creates a new QueryHandler. The policy provides the queue's age bucket.
func NewQueryHandler(eventStore EventStore, policy core.CirculationPolicy) QueryHandler {
	return QueryHandler{
		eventStore: eventStore,
		policy:     policy,
	}
}

// Handle executes the query. Unknown items yield a result with Exists=false, not an error.
func (h QueryHandler) Handle(ctx context.Context, query Query) (ItemAvailability, error) {
	storableEvents, _, err := h.eventStore.Query(ctx, BuildEventFilter(query.ItemID))
	if err != nil {
		return ItemAvailability{}, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return ItemAvailability{}, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	return Project(history, query, h.policy.ReservationAgeBucket), nil
}
