package extendborrow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/extendborrow"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

var dueDate = fixtures.Now.Add(24 * time.Hour)

func borrowed(extra ...core.DomainEvent) core.DomainEvents {
	return append(core.DomainEvents{
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.CopyAdded("item-1", "inst-1"),
		fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", dueDate),
	}, extra...)
}

func extended(n int) core.LoanExtended {
	return core.LoanExtended{
		DetailID:        core.DetailIDFor("rec-1", "inst-1"),
		PatronID:        "patron-1",
		ItemID:          "item-1",
		ExtensionNumber: n,
		PreviousDueDate: dueDate,
		NewDueDate:      dueDate,
		OccurredAt:      fixtures.Ago(time.Hour),
	}
}

func Test_Decide_Success_MovesTheDueDate(t *testing.T) {
	// arrange
	history := borrowed()

	// act
	result := extendborrow.Decide(history, extendborrow.BuildCommand(core.DetailIDFor("rec-1", "inst-1"), fixtures.Now), fixtures.Policy())

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 1)

	event, ok := result.Events[0].(core.LoanExtended)
	require.True(t, ok)
	assert.Equal(t, 1, event.ExtensionNumber)
	assert.Equal(t, dueDate.Add(fixtures.Policy().ExtensionPeriod), event.NewDueDate)

	item := core.ProjectItem(append(history, result.Events...), "item-1")
	loan, _ := item.Loan(event.DetailID)
	assert.Equal(t, 1, loan.TotalExtension)
	assert.Equal(t, event.NewDueDate, loan.DueDate)
}

func Test_Decide_Errors(t *testing.T) {
	policy := fixtures.Policy()
	policy.MaxBorrowExtension = 2

	testCases := []struct {
		name         string
		history      core.DomainEvents
		now          time.Time
		expectedKind string
	}{
		{
			name:         "unknown loan",
			now:          fixtures.Now,
			expectedKind: core.KindNotFound,
		},
		{
			name:         "loan past due",
			history:      borrowed(),
			now:          dueDate.Add(time.Minute),
			expectedKind: core.KindStateConflict,
		},
		{
			name:         "loan returned",
			history:      borrowed(fixtures.Returned(fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", dueDate), fixtures.Now)),
			now:          fixtures.Now,
			expectedKind: core.KindStateConflict,
		},
		{
			name:         "maximum extensions reached",
			history:      borrowed(extended(1), extended(2)),
			now:          fixtures.Now,
			expectedKind: core.KindEligibility,
		},
		{
			name:         "another patron waits for the item",
			history:      borrowed(fixtures.ReservationPlaced("res-1", "patron-2", "item-1", fixtures.Ago(time.Hour))),
			now:          fixtures.Now,
			expectedKind: core.KindReservationConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := extendborrow.Decide(tc.history, extendborrow.BuildCommand(core.DetailIDFor("rec-1", "inst-1"), tc.now), policy)

			// assert
			assert.Equal(t, tc.expectedKind, core.KindOf(result.HasError()))
		})
	}
}
