package removecopy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/removecopy"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func Test_Decide_Success_WhenCopyIsOnTheShelf(t *testing.T) {
	// arrange
	history := core.DomainEvents{
		fixtures.CopyAdded("item-1", "inst-1"),
		fixtures.CopyAdded("item-1", "inst-2"),
	}

	// act
	result := removecopy.Decide(history, removecopy.BuildCommand("item-1", "inst-1", "worn out", fixtures.Now))

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 1)

	item := core.ProjectItem(append(history, result.Events...), "item-1")
	assert.Equal(t, 1, item.Inventory.Total())
	assert.Equal(t, 1, item.Inventory.Available())

	instance, _ := item.Instance("inst-1")
	assert.Equal(t, core.InstanceWithdrawn, instance.Status)
}

func Test_Decide_Success_WithoutMovement_WhenCopyWasLost(t *testing.T) {
	// arrange
	loan := fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Ago(40*24*time.Hour))
	history := core.DomainEvents{
		fixtures.CopyAdded("item-1", "inst-1"),
		loan,
		core.LoanMarkedLost{
			DetailID:   loan.DetailID,
			PatronID:   "patron-1",
			ItemID:     "item-1",
			InstanceID: "inst-1",
			Movement:   core.Move(core.BucketBorrowed, core.BucketNone),
			OccurredAt: fixtures.Ago(time.Hour),
		},
	}

	// act
	result := removecopy.Decide(history, removecopy.BuildCommand("item-1", "inst-1", "lost", fixtures.Now))

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 1)
	event := result.Events[0].(core.ItemCopyRemovedFromCirculation)
	assert.True(t, event.Movement.IsZero())
	assert.NoError(t, core.ProjectItem(append(history, result.Events...), "item-1").CheckIntegrity())
}

func Test_Decide_Idempotent_WhenCopyWasAlreadyWithdrawn(t *testing.T) {
	// arrange
	history := core.DomainEvents{
		fixtures.CopyAdded("item-1", "inst-1"),
		core.ItemCopyRemovedFromCirculation{
			ItemID:     "item-1",
			InstanceID: "inst-1",
			Movement:   core.Move(core.BucketAvailable, core.BucketNone),
			OccurredAt: fixtures.Ago(time.Hour),
		},
	}

	// act
	result := removecopy.Decide(history, removecopy.BuildCommand("item-1", "inst-1", "again", fixtures.Now))

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
			name:         "unknown item",
			expectedKind: core.KindNotFound,
		},
		{
			name:         "unknown copy",
			history:      core.DomainEvents{fixtures.CopyAdded("item-1", "inst-2")},
			expectedKind: core.KindNotFound,
		},
		{
			name: "copy is borrowed",
			history: core.DomainEvents{
				fixtures.CopyAdded("item-1", "inst-1"),
				fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Now.Add(24*time.Hour)),
			},
			expectedKind: core.KindStateConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := removecopy.Decide(tc.history, removecopy.BuildCommand("item-1", "inst-1", "reason", fixtures.Now))

			// assert
			assert.Equal(t, tc.expectedKind, core.KindOf(result.HasError()))
		})
	}
}
