package cancelborrowrequest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/cancelborrowrequest"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore/memengine"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := memengine.NewEventStore()
	fixtures.Given(t, es, approvedRequestWithAutoReservation()...)
	handler := cancelborrowrequest.NewCommandHandler(es)

	// act
	result, err := handler.Handle(ctx, cancelborrowrequest.BuildCommand("req-1", "", fixtures.Now))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, core.RequestStatusCancelled, core.ProjectRequest(fixtures.History(t, es), "req-1").Status)
}

func Test_CommandHandler_Handle_NotFound_WhenRequestIsUnknown(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := memengine.NewEventStore()
	fixtures.Given(t, es, fixtures.PatronRegistered("patron-1"))
	handler := cancelborrowrequest.NewCommandHandler(es)

	// act
	_, err := handler.Handle(ctx, cancelborrowrequest.BuildCommand("req-9", "", fixtures.Now.Add(time.Minute)))

	// assert
	assert.ErrorIs(t, err, core.ErrNotFound)
}
