package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore/memengine"
)

var fakeNow = core.ToOccurredAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

func Test_HandleCommand_Success_AppendsAllEventsOfTheDecision(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := memengine.NewEventStore()
	filter := itemFilter("item-1")
	events := core.DomainEvents{
		copyAdded("item-1", "inst-1"),
		copyAdded("item-1", "inst-2"),
	}

	// act
	result, err := shell.HandleCommand(ctx, es, filter, func(core.DomainEvents) core.DecisionResult {
		return core.SuccessDecision(events...)
	})

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, 1, result.RetryAttempts)
	assert.Equal(t, events, result.Events)

	history, err := shell.LookupHistory(ctx, es, filter)
	require.NoError(t, err)
	require.Len(t, history, 2)

	readBack, ok := history[1].(core.ItemCopyAddedToCirculation)
	require.True(t, ok)
	assert.Equal(t, "inst-2", readBack.InstanceID)
	assert.Equal(t, core.Move(core.BucketNone, core.BucketAvailable), readBack.Movement)
	assert.True(t, fakeNow.Equal(readBack.OccurredAt))
}

func Test_HandleCommand_PassesHistoryToDecide(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := memengine.NewEventStore()
	filter := itemFilter("item-1")
	givenAppended(t, es, filter, copyAdded("item-1", "inst-1"))

	var seen core.DomainEvents

	// act
	result, err := shell.HandleCommand(ctx, es, filter, func(history core.DomainEvents) core.DecisionResult {
		seen = history
		return core.IdempotentDecision()
	})

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Empty(t, result.Events)
	require.Len(t, seen, 1)
	assert.IsType(t, core.ItemCopyAddedToCirculation{}, seen[0])
}

func Test_HandleCommand_ReturnsBusinessError_WithoutAppending(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := memengine.NewEventStore()
	filter := itemFilter("item-1")

	// act
	_, err := shell.HandleCommand(ctx, es, filter, func(core.DomainEvents) core.DecisionResult {
		return core.ErrorDecision(core.NotFoundError("item item-1"))
	})

	// assert
	assert.ErrorIs(t, err, core.ErrNotFound)

	history, lookupErr := shell.LookupHistory(ctx, es, filter)
	require.NoError(t, lookupErr)
	assert.Empty(t, history)
}

func Test_HandleCommand_ReturnsStateConflict_WhenRetriesAreExhausted(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := conflictingEventStore{EventStore: memengine.NewEventStore()}

	// act
	result, err := shell.HandleCommand(
		ctx,
		es,
		itemFilter("item-1"),
		func(core.DomainEvents) core.DecisionResult {
			return core.SuccessDecision(copyAdded("item-1", "inst-1"))
		},
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(0),
	)

	// assert
	assert.ErrorIs(t, err, core.ErrStateConflict)
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.True(t, result.RetriesExhausted)
	assert.Equal(t, 3, result.RetryAttempts)
}

func Test_HandleCommand_ReturnsExternalDependency_WhenQueryFails(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := failingEventStore{err: errors.New("connection refused")}

	// act
	_, err := shell.HandleCommand(ctx, es, itemFilter("item-1"), func(core.DomainEvents) core.DecisionResult {
		return core.IdempotentDecision()
	})

	// assert
	assert.ErrorIs(t, err, core.ErrExternalDependency)
	assert.Equal(t, core.KindExternalDependency, core.KindOf(err))
}

func Test_HandleCommand_WritesCorrelationIDIntoMetadata(t *testing.T) {
	// arrange
	es := memengine.NewEventStore()
	filter := itemFilter("item-1")
	correlationID := shell.CorrelationIDFrom(context.Background())
	ctx := shell.WithCorrelationID(context.Background(), correlationID)

	// act
	_, err := shell.HandleCommand(ctx, es, filter, func(core.DomainEvents) core.DecisionResult {
		return core.SuccessDecision(copyAdded("item-1", "inst-1"))
	})

	// assert
	require.NoError(t, err)

	storableEvents, _, err := es.Query(ctx, filter)
	require.NoError(t, err)
	require.Len(t, storableEvents, 1)

	metadata, err := shell.EventMetadataFrom(storableEvents[0])
	require.NoError(t, err)
	assert.Equal(t, correlationID.String(), metadata.CorrelationID)
	assert.Equal(t, correlationID.String(), metadata.CausationID)
	assert.NotEqual(t, metadata.CorrelationID, metadata.MessageID)
}

func Test_DomainEventFrom_Fails_ForUnknownEventType(t *testing.T) {
	// arrange
	storableEvent, err := eventstore.BuildStorableEventWithEmptyMetadata("SomethingElse", fakeNow, []byte(`{}`))
	require.NoError(t, err)

	// act
	_, err = shell.DomainEventFrom(storableEvent)

	// assert
	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventUnknownEventType)
}

func Test_ManualClock_AdvancesOnlyWhenTold(t *testing.T) {
	// arrange
	clock := shell.NewManualClock(fakeNow)

	// act
	clock.Advance(2 * time.Hour)

	// assert
	assert.Equal(t, fakeNow.Add(2*time.Hour), clock.Now())
}

type conflictingEventStore struct {
	*memengine.EventStore
}

func (conflictingEventStore) Append(
	context.Context,
	eventstore.Filter,
	eventstore.MaxSequenceNumberUint,
	...eventstore.StorableEvent,
) error {
	return eventstore.ErrConcurrencyConflict
}

type failingEventStore struct {
	err error
}

func (s failingEventStore) Query(context.Context, eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {
	return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, s.err)
}

func (s failingEventStore) Append(
	context.Context,
	eventstore.Filter,
	eventstore.MaxSequenceNumberUint,
	...eventstore.StorableEvent,
) error {
	return s.err
}

func itemFilter(itemID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", itemID)).
		Finalize()
}

func copyAdded(itemID, instanceID string) core.ItemCopyAddedToCirculation {
	return core.ItemCopyAddedToCirculation{
		ItemID:         itemID,
		InstanceID:     instanceID,
		ConditionGrade: "good",
		EstimatedPrice: 2000,
		Movement:       core.Move(core.BucketNone, core.BucketAvailable),
		OccurredAt:     fakeNow,
	}
}

func givenAppended(t *testing.T, es shell.EventStore, filter eventstore.Filter, events ...core.DomainEvent) {
	t.Helper()

	_, err := shell.HandleCommand(context.Background(), es, filter, func(core.DomainEvents) core.DecisionResult {
		return core.SuccessDecision(events...)
	})
	require.NoError(t, err)
}
