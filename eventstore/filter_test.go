package eventstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

func Test_FilterBuilder_ValidCombinations(t *testing.T) {
	tests := []struct {
		name     string
		build    func() eventstore.Filter
		validate func(t *testing.T, filter eventstore.Filter)
	}{
		{
			name: "matching_any_event_creates_empty_filter",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().MatchingAnyEvent()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Empty(t, f.Items())
			},
		},
		{
			name: "event_types_only",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("ItemCheckedOut", "ItemReturned").
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Equal(t, []string{"ItemCheckedOut", "ItemReturned"}, f.Items()[0].EventTypes())
				assert.Empty(t, f.Items()[0].Predicates())
			},
		},
		{
			name: "any_predicates_only",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyPredicateOf(eventstore.P("PatronID", "p-1"), eventstore.P("ItemID", "i-1")).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Empty(t, f.Items()[0].EventTypes())
				assert.Equal(t,
					[]eventstore.FilterPredicate{eventstore.P("ItemID", "i-1"), eventstore.P("PatronID", "p-1")},
					f.Items()[0].Predicates(),
					"predicates should be sorted by key")
				assert.False(t, f.Items()[0].AllPredicatesMustMatch())
			},
		},
		{
			name: "event_types_and_all_predicates",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("DigitalBorrowRegistered").
					AndAllPredicatesOf(eventstore.P("ResourceID", "r-1"), eventstore.P("PatronID", "p-1")).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.True(t, f.Items()[0].AllPredicatesMustMatch())
				assert.Len(t, f.Items()[0].Predicates(), 2)
			},
		},
		{
			name: "multiple_items",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyPredicateOf(eventstore.P("ItemID", "i-1")).
					OrMatching().
					AnyEventTypeOf("PatronRegistered").
					AndAnyPredicateOf(eventstore.P("PatronID", "p-1")).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 2)
				assert.Empty(t, f.Items()[0].EventTypes())
				assert.Equal(t, []string{"PatronRegistered"}, f.Items()[1].EventTypes())
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.validate(t, tc.build())
		})
	}
}

func Test_FilterBuilder_InputSanitization(t *testing.T) {
	// act
	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("ItemReturned", "", "ItemCheckedOut", "ItemReturned").
		AndAnyPredicateOf(
			eventstore.P("ItemID", "i-2"),
			eventstore.P("ItemID", "i-1"),
			eventstore.P("ItemID", "i-2"),
			eventstore.P("", "x"),
			eventstore.P("PatronID", ""),
		).
		Finalize()

	// assert
	item := filter.Items()[0]
	assert.Equal(t, []string{"ItemCheckedOut", "ItemReturned"}, item.EventTypes(), "event types should be sorted, compacted, non-empty")
	assert.Equal(t,
		[]eventstore.FilterPredicate{eventstore.P("ItemID", "i-1"), eventstore.P("ItemID", "i-2")},
		item.Predicates(),
		"predicates should be sorted, compacted, complete")
}

func Test_FilterBuilder_IntermediateBuildersAreImmutable(t *testing.T) {
	// arrange
	base := eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("ItemID", "i-1"))

	// act
	first := base.AndAnyEventTypeOf("ItemReturned").Finalize()
	second := base.AndAnyEventTypeOf("ItemCheckedOut").Finalize()

	// assert
	assert.Equal(t, []string{"ItemReturned"}, first.Items()[0].EventTypes())
	assert.Equal(t, []string{"ItemCheckedOut"}, second.Items()[0].EventTypes())
}
