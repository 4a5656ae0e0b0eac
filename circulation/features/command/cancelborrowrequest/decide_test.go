package cancelborrowrequest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/cancelborrowrequest"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func approvedRequestWithAutoReservation() core.DomainEvents {
	return core.DomainEvents{
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.CopyAdded("item-1", "inst-1"),
		fixtures.CopyAdded("item-2", "inst-2"),
		fixtures.CheckedOut("rec-0", "patron-2", "item-2", "inst-2", fixtures.Now.Add(48*time.Hour)),
		fixtures.RequestSubmitted("req-1", "patron-1", fixtures.Now.Add(time.Hour), "item-1", "item-2"),
		fixtures.ItemRequested("req-1", "patron-1", "item-1"),
		fixtures.AutoReservationPlaced("req-1", "patron-1", "item-2", fixtures.Ago(2*time.Hour)),
		fixtures.InstanceAssigned("req-1", "patron-1", "item-1", "inst-1"),
		fixtures.RequestApproved("req-1", "patron-1"),
	}
}

func Test_Decide_Success_ReleasesUnitsAndCancelsAutoReservations(t *testing.T) {
	// arrange
	history := approvedRequestWithAutoReservation()

	// act
	result := cancelborrowrequest.Decide(history, cancelborrowrequest.BuildCommand("req-1", "changed my mind", fixtures.Now))

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 3)
	assert.IsType(t, core.BorrowRequestCancelled{}, result.Events[0])

	released, ok := result.Events[1].(core.ItemRequestReleased)
	require.True(t, ok)
	assert.Equal(t, "inst-1", released.InstanceID)

	cancelled, ok := result.Events[2].(core.ReservationCancelled)
	require.True(t, ok)
	assert.Equal(t, core.ReservationIDFor("req-1", "item-2"), cancelled.ReservationID)
	assert.Equal(t, core.NoMovement(), cancelled.Movement)

	after := append(history, result.Events...)
	item := core.ProjectItem(after, "item-1")
	require.NoError(t, item.CheckIntegrity())
	assert.Equal(t, 1, item.Inventory.Available())
	instance, _ := item.Instance("inst-1")
	assert.Equal(t, core.InstanceInShelf, instance.Status)

	assert.Empty(t, core.ProjectItem(after, "item-2").PendingQueue(0))

	patron := core.ProjectPatron(after, "patron-1")
	assert.Equal(t, 0, patron.Outstanding())
	assert.Equal(t, 0, patron.ActiveReservations())
}

func Test_Decide_Idempotent_WhenAlreadyCancelled(t *testing.T) {
	// arrange
	history := append(approvedRequestWithAutoReservation(), fixtures.RequestCancelled("req-1", "patron-1"))

	// act
	result := cancelborrowrequest.Decide(history, cancelborrowrequest.BuildCommand("req-1", "", fixtures.Now))

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
			name:         "unknown request",
			history:      core.DomainEvents{fixtures.PatronRegistered("patron-1")},
			expectedKind: core.KindNotFound,
		},
		{
			name: "request expired",
			history: append(approvedRequestWithAutoReservation(), core.BorrowRequestExpired{
				RequestID: "req-1", PatronID: "patron-1", OccurredAt: fixtures.Ago(time.Minute),
			}),
			expectedKind: core.KindStateConflict,
		},
		{
			name: "request fulfilled",
			history: append(approvedRequestWithAutoReservation(), core.BorrowRequestFulfilled{
				RequestID: "req-1", PatronID: "patron-1", RecordID: "rec-1", OccurredAt: fixtures.Ago(time.Minute),
			}),
			expectedKind: core.KindStateConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := cancelborrowrequest.Decide(tc.history, cancelborrowrequest.BuildCommand("req-1", "", fixtures.Now))

			// assert
			assert.Equal(t, tc.expectedKind, core.KindOf(result.HasError()))
		})
	}
}
