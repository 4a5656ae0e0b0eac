package postgresengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore/postgresengine/internal/adapters"
)

type fakeDB struct {
	rows         []queryResultRow
	rowsAffected int64
	queryErr     error
	execErr      error
	lastSQL      string
}

func (f *fakeDB) Query(_ context.Context, query string) (adapters.DBRows, error) {
	f.lastSQL = query
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return &fakeRows{rows: f.rows, idx: -1}, nil
}

func (f *fakeDB) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	f.lastSQL = query
	if f.execErr != nil {
		return nil, f.execErr
	}

	return fakeResult(f.rowsAffected), nil
}

func (f *fakeDB) Ping(context.Context) error { return nil }

type fakeRows struct {
	rows []queryResultRow
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++

	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx]
	*dest[0].(*string) = row.eventType
	*dest[1].(*time.Time) = row.occurredAt
	*dest[2].(*[]byte) = row.payload
	*dest[3].(*[]byte) = row.metadata
	*dest[4].(*eventstore.MaxSequenceNumberUint) = row.maxSequenceNumber

	return nil
}

func (r *fakeRows) Close() error { return nil }

type fakeResult int64

func (r fakeResult) RowsAffected() (int64, error) { return int64(r), nil }

func givenEventStore(t *testing.T, db *fakeDB) EventStore {
	t.Helper()

	es, err := newEventStore(db, WithTableName("circulation_events"))
	require.NoError(t, err)

	return es
}

func givenStorableEvent(t *testing.T, eventType string, payload string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Unix(0, 0).UTC(), []byte(payload))
	require.NoError(t, err)

	return event
}

func Test_NewEventStore_Fails_When_TableNameIsEmpty(t *testing.T) {
	// act
	_, err := newEventStore(&fakeDB{}, WithTableName(""))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrEmptyEventsTableName)
}

func Test_NewEventStoreFromPGXPool_Fails_When_PoolIsNil(t *testing.T) {
	// act
	_, err := NewEventStoreFromPGXPool(nil)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)
}

func Test_BuildSelectQuery_TranslatesFilterItems(t *testing.T) {
	// arrange
	es := givenEventStore(t, &fakeDB{})
	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("ItemCheckedOut", "ItemReturned").
		AndAnyPredicateOf(eventstore.P("ItemID", "item-1")).
		OrMatching().
		AllPredicatesOf(eventstore.P("PatronID", "patron-1"), eventstore.P("ResourceID", "res-1")).
		Finalize()

	// act
	sqlQuery, err := es.buildSelectQuery(filter)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `FROM "circulation_events"`)
	assert.Contains(t, sqlQuery, `"event_type" = 'ItemCheckedOut'`)
	assert.Contains(t, sqlQuery, `"event_type" = 'ItemReturned'`)
	assert.Contains(t, sqlQuery, `payload @> '{"ItemID":"item-1"}'::jsonb`)
	assert.Contains(t, sqlQuery, `payload @> '{"PatronID":"patron-1"}'::jsonb AND payload @> '{"ResourceID":"res-1"}'::jsonb`)
	assert.Contains(t, sqlQuery, `ORDER BY "sequence_number" ASC`)
}

func Test_BuildSelectQuery_HasNoWhereClause_When_FilterIsEmpty(t *testing.T) {
	// arrange
	es := givenEventStore(t, &fakeDB{})

	// act
	sqlQuery, err := es.buildSelectQuery(eventstore.BuildEventFilter().MatchingAnyEvent())

	// assert
	require.NoError(t, err)
	assert.NotContains(t, sqlQuery, "WHERE")
}

func Test_BuildSelectQuery_EscapesPredicateValues(t *testing.T) {
	// arrange
	es := givenEventStore(t, &fakeDB{})
	filter := eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("ItemID", "x' OR '1'='1")).
		Finalize()

	// act
	sqlQuery, err := es.buildSelectQuery(filter)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `'{"ItemID":"x'' OR ''1''=''1"}'::jsonb`)
}

func Test_Query_ReturnsEventsAndMaxSequenceNumber(t *testing.T) {
	// arrange
	db := &fakeDB{rows: []queryResultRow{
		{eventType: "ItemCopyAddedToCirculation", payload: []byte(`{"ItemID":"item-1"}`), metadata: []byte(`{}`), maxSequenceNumber: 4},
		{eventType: "ItemCheckedOut", payload: []byte(`{"ItemID":"item-1"}`), metadata: []byte(`{}`), maxSequenceNumber: 9},
	}}
	es := givenEventStore(t, db)

	// act
	events, maxSeq, err := es.Query(context.Background(), eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("ItemID", "item-1")).Finalize())

	// assert
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "ItemCheckedOut", events[1].EventType)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(9), maxSeq)
}

func Test_Query_WrapsDatabaseErrors(t *testing.T) {
	// arrange
	es := givenEventStore(t, &fakeDB{queryErr: errors.New("connection reset")})

	// act
	_, _, err := es.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())

	// assert
	assert.ErrorIs(t, err, eventstore.ErrQueryingEventsFailed)
}

func Test_Append_Fails_When_NoEventsAreGiven(t *testing.T) {
	// arrange
	es := givenEventStore(t, &fakeDB{})

	// act
	err := es.Append(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent(), 0)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrNoEventsToAppend)
}

func Test_Append_GuardsSingleEventWithExpectedSequence(t *testing.T) {
	// arrange
	db := &fakeDB{rowsAffected: 1}
	es := givenEventStore(t, db)
	filter := eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("ItemID", "item-1")).Finalize()

	// act
	err := es.Append(context.Background(), filter, 7, givenStorableEvent(t, "ItemReturned", `{"ItemID":"item-1"}`))

	// assert
	require.NoError(t, err)
	assert.Contains(t, db.lastSQL, `INSERT INTO "circulation_events"`)
	assert.Contains(t, db.lastSQL, `COALESCE("max_seq", 0) = 7`)
	assert.NotContains(t, db.lastSQL, "UNION ALL")
}

func Test_Append_InsertsMultipleEventsInOneStatement(t *testing.T) {
	// arrange
	db := &fakeDB{rowsAffected: 2}
	es := givenEventStore(t, db)
	filter := eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("ItemID", "item-1")).Finalize()

	// act
	err := es.Append(
		context.Background(),
		filter,
		3,
		givenStorableEvent(t, "ItemReturned", `{"ItemID":"item-1"}`),
		givenStorableEvent(t, "ReservationAssigned", `{"ItemID":"item-1"}`),
	)

	// assert
	require.NoError(t, err)
	assert.Contains(t, db.lastSQL, "UNION ALL")
	assert.Contains(t, db.lastSQL, `COALESCE("max_seq", 0) = 3`)
}

func Test_Append_ReportsConcurrencyConflict_When_NotAllRowsWereInserted(t *testing.T) {
	// arrange
	es := givenEventStore(t, &fakeDB{rowsAffected: 0})

	// act
	err := es.Append(
		context.Background(),
		eventstore.BuildEventFilter().MatchingAnyEvent(),
		1,
		givenStorableEvent(t, "ItemReturned", `{"ItemID":"item-1"}`),
	)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
}

func Test_Append_WrapsDatabaseErrors(t *testing.T) {
	// arrange
	es := givenEventStore(t, &fakeDB{execErr: errors.New("disk full")})

	// act
	err := es.Append(
		context.Background(),
		eventstore.BuildEventFilter().MatchingAnyEvent(),
		0,
		givenStorableEvent(t, "ItemReturned", `{"ItemID":"item-1"}`),
	)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrAppendingEventFailed)
}

func Test_Append_ReportsConcurrencyConflict_When_SerializationFails(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "pgx", err: &pgconn.PgError{Code: "40001"}},
		{name: "lib/pq", err: &pq.Error{Code: "40001"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			es := givenEventStore(t, &fakeDB{execErr: tc.err})

			// act
			err := es.Append(
				context.Background(),
				eventstore.BuildEventFilter().MatchingAnyEvent(),
				0,
				givenStorableEvent(t, "ItemReturned", `{"ItemID":"item-1"}`),
			)

			// assert
			assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
		})
	}
}

func Test_EnsureSchema_CreatesConfiguredTable(t *testing.T) {
	// arrange
	db := &fakeDB{}
	es := givenEventStore(t, db)

	// act
	err := es.EnsureSchema(context.Background())

	// assert
	require.NoError(t, err)
	assert.Contains(t, db.lastSQL, "CREATE TABLE IF NOT EXISTS circulation_events")
	assert.Contains(t, db.lastSQL, "USING GIN (payload jsonb_path_ops)")
}
