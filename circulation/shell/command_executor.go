package shell

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// EventStore defines the event store operations command and query handlers need.
type EventStore interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		storableEvents ...eventstore.StorableEvent,
	) error
}

// DecideFunc is the pure business decision of a command over the queried history.
type DecideFunc func(history core.DomainEvents) core.DecisionResult

// HandleCommand runs Query -> Unmarshal -> Decide -> Append for filter and retries the whole
// cycle on concurrency conflicts.
//
// Returned errors always carry one of the core error kinds: business errors from decide are
// passed through, exhausted retries become ErrStateConflict, everything else becomes
// ErrExternalDependency.
func HandleCommand(
	ctx context.Context,
	eventStore EventStore,
	filter eventstore.Filter,
	decide DecideFunc,
	retryOptions ...RetryOption,
) (HandlerResult, error) {
	var (
		isIdempotent bool
		appended     core.DomainEvents
	)

	correlationID := CorrelationIDFrom(ctx)

	retryMetrics, err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		isIdempotent, appended = false, nil

		retryCtx = eventstore.WithStrongConsistency(retryCtx)

		// Query phase
		storableEvents, maxSequenceNumber, queryErr := eventStore.Query(retryCtx, filter)
		if queryErr != nil {
			return queryErr
		}

		// Unmarshal phase
		history, mapErr := DomainEventsFrom(storableEvents)
		if mapErr != nil {
			return mapErr
		}

		// Business logic phase
		result := decide(history)

		if decideErr := result.HasError(); decideErr != nil {
			return decideErr
		}

		if !result.HasEventsToAppend() {
			isIdempotent = true
			return nil
		}

		// Append phase - all events of the decision in one atomic append
		toAppend, mapErr := StorableEventsFrom(result.Events, correlationID)
		if mapErr != nil {
			return mapErr
		}

		if appendErr := eventStore.Append(retryCtx, filter, maxSequenceNumber, toAppend...); appendErr != nil {
			return appendErr
		}

		appended = result.Events

		return nil
	}, retryOptions...)

	if err != nil {
		return NewErrorResult(retryMetrics), classify(err, retryMetrics)
	}

	if isIdempotent {
		return NewIdempotentResult(retryMetrics), nil
	}

	return NewSuccessResult(retryMetrics, appended), nil
}

// LookupHistory queries the events matching filter without deciding anything.
// Lookups resolve ids (e.g. the item of a loan) before the command's own consistency boundary is known.
func LookupHistory(ctx context.Context, eventStore EventStore, filter eventstore.Filter) (core.DomainEvents, error) {
	storableEvents, _, err := eventStore.Query(eventstore.WithStrongConsistency(ctx), filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	history, err := DomainEventsFrom(storableEvents)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	return history, nil
}

func classify(err error, retryMetrics RetryMetrics) error {
	switch {
	case core.KindOf(err) != core.KindUnknown:
		return err
	case retryMetrics.RetriesExhausted && errors.Is(err, eventstore.ErrConcurrencyConflict):
		return fmt.Errorf("%w: retries exhausted after %d attempts: %w", core.ErrStateConflict, retryMetrics.Attempts, err)
	default:
		return fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}
}
