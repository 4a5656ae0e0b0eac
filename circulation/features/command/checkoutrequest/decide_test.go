package checkoutrequest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/checkoutrequest"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func approvedRequest(extra ...core.DomainEvent) core.DomainEvents {
	return append(core.DomainEvents{
		fixtures.PatronRegistered("patron-1"),
		fixtures.CopyAddedWith("item-1", "inst-1", "fair", 1800),
		fixtures.CopyAdded("item-2", "inst-2"),
		fixtures.RequestSubmitted("req-1", "patron-1", fixtures.Now.Add(time.Hour), "item-1", "item-2"),
		fixtures.ItemRequested("req-1", "patron-1", "item-1"),
		fixtures.ItemRequested("req-1", "patron-1", "item-2"),
		fixtures.InstanceAssigned("req-1", "patron-1", "item-1", "inst-1"),
		fixtures.InstanceAssigned("req-1", "patron-1", "item-2", "inst-2"),
		fixtures.RequestApproved("req-1", "patron-1"),
	}, extra...)
}

func Test_Decide_Success_ChecksOutEveryAssignedCopy(t *testing.T) {
	// arrange
	history := approvedRequest()

	// act
	result := checkoutrequest.Decide(history, checkoutrequest.BuildCommand("req-1", "rec-1", fixtures.Now), fixtures.Policy())

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 3)

	checkedOut, ok := result.Events[0].(core.ItemCheckedOut)
	require.True(t, ok)
	assert.Equal(t, core.DetailIDFor("rec-1", "inst-1"), checkedOut.DetailID)
	assert.Equal(t, "fair", checkedOut.ConditionGrade)
	assert.Equal(t, core.Money(1800), checkedOut.EstimatedPrice)
	assert.Equal(t, fixtures.Now.Add(fixtures.Policy().LoanPeriod), checkedOut.DueDate)

	fulfilled, ok := result.Events[2].(core.BorrowRequestFulfilled)
	require.True(t, ok)
	assert.Equal(t, "rec-1", fulfilled.RecordID)

	after := append(history, result.Events...)
	item := core.ProjectItem(after, "item-1")
	require.NoError(t, item.CheckIntegrity())
	assert.Equal(t, 1, item.Inventory.Borrowed())
	assert.Equal(t, 0, item.Inventory.Requested())
	assert.Equal(t, 2, core.ProjectPatron(after, "patron-1").OutstandingLoans())
	assert.Equal(t, core.RequestStatusFulfilled, core.ProjectRequest(after, "req-1").Status)
}

func Test_Decide_Idempotent_WhenRequestIsFulfilled(t *testing.T) {
	// arrange
	history := approvedRequest(core.BorrowRequestFulfilled{
		RequestID: "req-1", PatronID: "patron-1", RecordID: "rec-1", OccurredAt: fixtures.Ago(time.Minute),
	})

	// act
	result := checkoutrequest.Decide(history, checkoutrequest.BuildCommand("req-1", "rec-1", fixtures.Now), fixtures.Policy())

	// assert
	assert.True(t, result.IsIdempotent())
}

func Test_Decide_Errors(t *testing.T) {
	pending := core.DomainEvents{
		fixtures.PatronRegistered("patron-1"),
		fixtures.CopyAdded("item-1", "inst-1"),
		fixtures.RequestSubmitted("req-1", "patron-1", fixtures.Now.Add(time.Hour), "item-1"),
		fixtures.ItemRequested("req-1", "patron-1", "item-1"),
	}

	testCases := []struct {
		name         string
		history      core.DomainEvents
		now          time.Time
		expectedKind string
	}{
		{
			name:         "unknown request",
			now:          fixtures.Now,
			expectedKind: core.KindNotFound,
		},
		{
			name:         "request not approved",
			history:      pending,
			now:          fixtures.Now,
			expectedKind: core.KindStateConflict,
		},
		{
			name:         "request expired",
			history:      approvedRequest(),
			now:          fixtures.Now.Add(2 * time.Hour),
			expectedKind: core.KindStateConflict,
		},
		{
			name:         "patron suspended",
			history:      approvedRequest(fixtures.PatronSuspended("patron-1")),
			now:          fixtures.Now,
			expectedKind: core.KindEligibility,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := checkoutrequest.Decide(tc.history, checkoutrequest.BuildCommand("req-1", "rec-1", tc.now), fixtures.Policy())

			// assert
			assert.Equal(t, tc.expectedKind, core.KindOf(result.HasError()))
		})
	}
}
