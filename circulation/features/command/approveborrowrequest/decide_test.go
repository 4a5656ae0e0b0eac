package approveborrowrequest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/approveborrowrequest"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func pendingRequest(extra ...core.DomainEvent) core.DomainEvents {
	return append(core.DomainEvents{
		fixtures.PatronRegistered("patron-1"),
		fixtures.CopyAdded("item-1", "inst-1a"),
		fixtures.CopyAdded("item-1", "inst-1b"),
		fixtures.CopyAdded("item-2", "inst-2"),
		fixtures.RequestSubmitted("req-1", "patron-1", fixtures.Now.Add(time.Hour), "item-1", "item-2"),
		fixtures.ItemRequested("req-1", "patron-1", "item-1"),
		fixtures.ItemRequested("req-1", "patron-1", "item-2"),
	}, extra...)
}

func Test_Decide_Success_AssignsOneCopyPerHeldItem(t *testing.T) {
	// arrange
	history := pendingRequest()
	command := approveborrowrequest.BuildCommand("req-1", map[string]string{"item-1": "inst-1b", "item-2": "inst-2"}, fixtures.Now)

	// act
	result := approveborrowrequest.Decide(history, command)

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Events, 3)
	assert.IsType(t, core.BorrowRequestApproved{}, result.Events[2])

	after := append(history, result.Events...)
	item := core.ProjectItem(after, "item-1")
	instance, _ := item.Instance("inst-1b")
	assert.Equal(t, core.InstanceOutOfShelf, instance.Status)
	assert.Equal(t, "req-1", instance.RequestID)
	assert.Equal(t, 1, item.Inventory.Requested(), "approval moves no units")

	request := core.ProjectRequest(after, "req-1")
	assert.Equal(t, core.RequestStatusApproved, request.Status)
	assert.Equal(t, "inst-1b", request.HeldItems[0].InstanceID)
}

func Test_Decide_Idempotent_WhenAlreadyApproved(t *testing.T) {
	// arrange
	history := pendingRequest(
		fixtures.InstanceAssigned("req-1", "patron-1", "item-1", "inst-1a"),
		fixtures.InstanceAssigned("req-1", "patron-1", "item-2", "inst-2"),
		fixtures.RequestApproved("req-1", "patron-1"),
	)
	command := approveborrowrequest.BuildCommand("req-1", map[string]string{"item-1": "inst-1a", "item-2": "inst-2"}, fixtures.Now)

	// act
	result := approveborrowrequest.Decide(history, command)

	// assert
	assert.True(t, result.IsIdempotent())
}

//nolint:funlen
func Test_Decide_Errors(t *testing.T) {
	testCases := []struct {
		name         string
		history      core.DomainEvents
		assignments  map[string]string
		now          time.Time
		expectedKind string
	}{
		{
			name:         "unknown request",
			history:      core.DomainEvents{fixtures.PatronRegistered("patron-1")},
			assignments:  map[string]string{"item-1": "inst-1a"},
			now:          fixtures.Now,
			expectedKind: core.KindNotFound,
		},
		{
			name:         "request expired",
			history:      pendingRequest(),
			assignments:  map[string]string{"item-1": "inst-1a", "item-2": "inst-2"},
			now:          fixtures.Now.Add(2 * time.Hour),
			expectedKind: core.KindStateConflict,
		},
		{
			name:         "request cancelled",
			history:      pendingRequest(fixtures.RequestCancelled("req-1", "patron-1")),
			assignments:  map[string]string{"item-1": "inst-1a", "item-2": "inst-2"},
			now:          fixtures.Now,
			expectedKind: core.KindStateConflict,
		},
		{
			name:         "assignment missing",
			history:      pendingRequest(),
			assignments:  map[string]string{"item-1": "inst-1a"},
			now:          fixtures.Now,
			expectedKind: core.KindStateConflict,
		},
		{
			name:         "assignment for an item that is not held",
			history:      pendingRequest(),
			assignments:  map[string]string{"item-1": "inst-1a", "item-3": "inst-3"},
			now:          fixtures.Now,
			expectedKind: core.KindStateConflict,
		},
		{
			name:         "copy of another item",
			history:      pendingRequest(),
			assignments:  map[string]string{"item-1": "inst-2", "item-2": "inst-2"},
			now:          fixtures.Now,
			expectedKind: core.KindNotFound,
		},
		{
			name: "copy not on the shelf",
			history: pendingRequest(
				fixtures.PatronRegistered("patron-2"),
				fixtures.CheckedOut("rec-1", "patron-2", "item-1", "inst-1a", fixtures.Now.Add(24*time.Hour)),
			),
			assignments:  map[string]string{"item-1": "inst-1a", "item-2": "inst-2"},
			now:          fixtures.Now,
			expectedKind: core.KindStateConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := approveborrowrequest.Decide(tc.history, approveborrowrequest.BuildCommand("req-1", tc.assignments, tc.now))

			// assert
			assert.Equal(t, tc.expectedKind, core.KindOf(result.HasError()))
			assert.False(t, result.HasEventsToAppend())
		})
	}
}
