package extenddigitalborrow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/extenddigitalborrow"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func extended(number int, ref string, previous time.Time) core.DigitalBorrowExtended {
	return core.DigitalBorrowExtended{
		BorrowID:        "borrow-1",
		ResourceID:      "ebook-1",
		PatronID:        "patron-1",
		TransactionRef:  ref,
		Fee:             fixtures.Policy().DigitalExtensionFee,
		ExtensionNumber: number,
		PreviousExpiry:  previous,
		NewExpiryDate:   previous.Add(fixtures.Policy().DigitalExtension()),
		OccurredAt:      fixtures.Ago(time.Minute),
	}
}

func Test_Decide_Success_MovesExpiryByOneExtensionPeriod(t *testing.T) {
	// arrange
	expiry := fixtures.Now.Add(24 * time.Hour)
	history := core.DomainEvents{fixtures.DigitalBorrowRegistered("borrow-1", "ebook-1", "patron-1", expiry)}
	charged := extenddigitalborrow.Charged{ExtensionNumber: 1, TransactionRef: "tx-ext-1", Fee: 500}

	// act
	result := extenddigitalborrow.Decide(history, extenddigitalborrow.BuildCommand("borrow-1", fixtures.Now), charged, fixtures.Policy())

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 1)

	event, ok := result.Events[0].(core.DigitalBorrowExtended)
	require.True(t, ok)
	assert.Equal(t, expiry, event.PreviousExpiry)
	assert.Equal(t, expiry.Add(7*24*time.Hour), event.NewExpiryDate)
	assert.Equal(t, 1, event.ExtensionNumber)

	lease := core.ProjectDigitalBorrow(append(history, result.Events...), "borrow-1")
	assert.Len(t, lease.Extensions, 1)
	assert.Equal(t, event.NewExpiryDate, lease.ExpiryDate)
}

func Test_Decide_Idempotent_WhenTransactionWasAlreadyRecorded(t *testing.T) {
	// arrange
	expiry := fixtures.Now.Add(24 * time.Hour)
	history := core.DomainEvents{
		fixtures.DigitalBorrowRegistered("borrow-1", "ebook-1", "patron-1", expiry),
		extended(1, "tx-ext-1", expiry),
	}
	charged := extenddigitalborrow.Charged{ExtensionNumber: 1, TransactionRef: "tx-ext-1", Fee: 500}

	// act
	result := extenddigitalborrow.Decide(history, extenddigitalborrow.BuildCommand("borrow-1", fixtures.Now), charged, fixtures.Policy())

	// assert
	assert.True(t, result.IsIdempotent())
}

//nolint:funlen
func Test_Decide_Errors(t *testing.T) {
	expiry := fixtures.Now.Add(24 * time.Hour)
	registered := fixtures.DigitalBorrowRegistered("borrow-1", "ebook-1", "patron-1", expiry)

	testCases := []struct {
		name         string
		history      core.DomainEvents
		charged      extenddigitalborrow.Charged
		expectedKind string
	}{
		{
			name:         "unknown lease",
			charged:      extenddigitalborrow.Charged{ExtensionNumber: 1, TransactionRef: "tx-a"},
			expectedKind: core.KindNotFound,
		},
		{
			name: "lease returned",
			history: core.DomainEvents{
				registered,
				core.DigitalBorrowReturned{BorrowID: "borrow-1", ResourceID: "ebook-1", PatronID: "patron-1", OccurredAt: fixtures.Ago(time.Hour)},
			},
			charged:      extenddigitalborrow.Charged{ExtensionNumber: 1, TransactionRef: "tx-a"},
			expectedKind: core.KindStateConflict,
		},
		{
			name:         "lease ran out",
			history:      core.DomainEvents{fixtures.DigitalBorrowRegistered("borrow-1", "ebook-1", "patron-1", fixtures.Ago(time.Minute))},
			charged:      extenddigitalborrow.Charged{ExtensionNumber: 1, TransactionRef: "tx-a"},
			expectedKind: core.KindStateConflict,
		},
		{
			name: "maximum extensions reached",
			history: core.DomainEvents{
				registered,
				extended(1, "tx-1", expiry),
				extended(2, "tx-2", expiry.Add(7*24*time.Hour)),
			},
			charged:      extenddigitalborrow.Charged{ExtensionNumber: 3, TransactionRef: "tx-3"},
			expectedKind: core.KindEligibility,
		},
		{
			name:         "extended concurrently",
			history:      core.DomainEvents{registered, extended(1, "tx-1", expiry)},
			charged:      extenddigitalborrow.Charged{ExtensionNumber: 1, TransactionRef: "tx-other"},
			expectedKind: core.KindStateConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := extenddigitalborrow.Decide(tc.history, extenddigitalborrow.BuildCommand("borrow-1", fixtures.Now), tc.charged, fixtures.Policy())

			// assert
			assert.Equal(t, tc.expectedKind, core.KindOf(result.HasError()))
		})
	}
}
