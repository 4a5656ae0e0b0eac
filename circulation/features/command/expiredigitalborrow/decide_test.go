package expiredigitalborrow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/expiredigitalborrow"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func Test_Decide_Success_WhenLeaseHasRunOut(t *testing.T) {
	// arrange
	history := core.DomainEvents{fixtures.DigitalBorrowRegistered("borrow-1", "ebook-1", "patron-1", fixtures.Now)}

	// act
	result := expiredigitalborrow.Decide(history, expiredigitalborrow.BuildCommand("borrow-1", fixtures.Now))

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 1)
	assert.Equal(t, core.DigitalBorrowStatusExpired, core.ProjectDigitalBorrow(append(history, result.Events...), "borrow-1").Status)
}

func Test_Decide_Idempotent_WhenLeaseIsNoLongerActive(t *testing.T) {
	// arrange
	history := core.DomainEvents{
		fixtures.DigitalBorrowRegistered("borrow-1", "ebook-1", "patron-1", fixtures.Ago(time.Hour)),
		core.DigitalBorrowReturned{BorrowID: "borrow-1", ResourceID: "ebook-1", PatronID: "patron-1", OccurredAt: fixtures.Ago(2 * time.Hour)},
	}

	// act
	result := expiredigitalborrow.Decide(history, expiredigitalborrow.BuildCommand("borrow-1", fixtures.Now))

	// assert
	assert.True(t, result.IsIdempotent())
}

func Test_Decide_Errors(t *testing.T) {
	testCases := []struct {
		name         string
		history      core.DomainEvents
		expectedKind string
	}{
		{
			name:         "unknown lease",
			expectedKind: core.KindNotFound,
		},
		{
			name:         "lease still running",
			history:      core.DomainEvents{fixtures.DigitalBorrowRegistered("borrow-1", "ebook-1", "patron-1", fixtures.Now.Add(time.Second))},
			expectedKind: core.KindStateConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := expiredigitalborrow.Decide(tc.history, expiredigitalborrow.BuildCommand("borrow-1", fixtures.Now))

			// assert
			assert.Equal(t, tc.expectedKind, core.KindOf(result.HasError()))
		})
	}
}
