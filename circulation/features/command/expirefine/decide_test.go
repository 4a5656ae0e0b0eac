package expirefine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/expirefine"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func Test_Decide_Success_WhenFineIsUnpaid(t *testing.T) {
	// arrange
	history := core.DomainEvents{fixtures.FineAssessed("fine-1", "patron-1", "item-1", 300)}

	// act
	result := expirefine.Decide(history, expirefine.BuildCommand("fine-1", "waived by staff", fixtures.Now))

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 1)

	expired, ok := result.Events[0].(core.FineExpired)
	require.True(t, ok)
	assert.Equal(t, "waived by staff", expired.Reason)
	assert.Equal(t, core.Money(0), core.ProjectPatron(append(history, result.Events...), "patron-1").UnpaidFines())
}

func Test_Decide_Idempotent_WhenFineIsAlreadyExpired(t *testing.T) {
	// arrange
	history := core.DomainEvents{
		fixtures.FineAssessed("fine-1", "patron-1", "item-1", 300),
		core.FineExpired{FineID: "fine-1", PatronID: "patron-1", OccurredAt: fixtures.Now},
	}

	// act
	result := expirefine.Decide(history, expirefine.BuildCommand("fine-1", "again", fixtures.Now))

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
			name:         "unknown fine",
			expectedKind: core.KindNotFound,
		},
		{
			name: "fine already paid",
			history: core.DomainEvents{
				fixtures.FineAssessed("fine-1", "patron-1", "item-1", 300),
				core.FinePaid{FineID: "fine-1", PatronID: "patron-1", Amount: 300, TransactionRef: "tx-1", OccurredAt: fixtures.Now},
			},
			expectedKind: core.KindStateConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := expirefine.Decide(tc.history, expirefine.BuildCommand("fine-1", "waived", fixtures.Now))

			// assert
			assert.Equal(t, tc.expectedKind, core.KindOf(result.HasError()))
		})
	}
}
