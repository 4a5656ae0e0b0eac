package shell

import (
	"context"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// FindFirst returns the first event of type E whose payload carries key=val.
// Commands addressed by a loan, reservation or request id use it to find the item and patron
// whose events form their consistency boundary.
func FindFirst[E core.DomainEvent](
	ctx context.Context,
	eventStore EventStore,
	key eventstore.FilterKeyString,
	val eventstore.FilterValString,
) (E, bool, error) {
	matches, err := findAll[E](ctx, eventStore, key, val)
	if err != nil || len(matches) == 0 {
		var zero E
		return zero, false, err
	}

	return matches[0], true, nil
}

// FindLast returns the most recent event of type E whose payload carries key=val.
// Use it for values that are reused over time, like reservation codes.
func FindLast[E core.DomainEvent](
	ctx context.Context,
	eventStore EventStore,
	key eventstore.FilterKeyString,
	val eventstore.FilterValString,
) (E, bool, error) {
	matches, err := findAll[E](ctx, eventStore, key, val)
	if err != nil || len(matches) == 0 {
		var zero E
		return zero, false, err
	}

	return matches[len(matches)-1], true, nil
}

func findAll[E core.DomainEvent](
	ctx context.Context,
	eventStore EventStore,
	key eventstore.FilterKeyString,
	val eventstore.FilterValString,
) ([]E, error) {
	if val == "" {
		return nil, nil
	}

	var zero E

	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(zero.IsEventType()).
		AndAllPredicatesOf(eventstore.P(key, val)).
		Finalize()

	history, err := LookupHistory(ctx, eventStore, filter)
	if err != nil {
		return nil, err
	}

	var matches []E

	for _, event := range history {
		if e, ok := event.(E); ok {
			matches = append(matches, e)
		}
	}

	return matches, nil
}
