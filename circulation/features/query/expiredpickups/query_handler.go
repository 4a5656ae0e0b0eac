package expiredpickups

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

// QueryHandler runs Query -> Unmarshal -> Project with eventual consistency.
// Every candidate is re-checked by its command, so a stale read only costs an idempotent no-op.
type QueryHandler struct {
	eventStore EventStore
}

// NewQueryHandler creates a new QueryHandler with the provided EventStore dependency.
func NewQueryHandler(eventStore EventStore) QueryHandler {
	return QueryHandler{
		eventStore: eventStore,
	}
}

// Handle executes the query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (ExpiredPickups, error) {
	storableEvents, _, err := h.eventStore.Query(eventstore.WithEventualConsistency(ctx), BuildEventFilter())
	if err != nil {
		return ExpiredPickups{}, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return ExpiredPickups{}, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	return Project(history, query), nil
}
