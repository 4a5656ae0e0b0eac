package expiredrequests_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/query/expiredrequests"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func Test_Project_ListsActiveRequestsPastExpiration(t *testing.T) {
	// arrange
	history := core.DomainEvents{
		fixtures.RequestSubmitted("req-1", "patron-1", fixtures.Ago(time.Hour), "item-1", "item-2"),
		fixtures.RequestSubmitted("req-2", "patron-2", fixtures.Now.Add(time.Hour), "item-1"),
		fixtures.RequestSubmitted("req-3", "patron-3", fixtures.Ago(2*time.Hour), "item-3"),
		fixtures.RequestCancelled("req-3", "patron-3"),
		fixtures.RequestSubmitted("req-4", "patron-4", fixtures.Ago(3*time.Hour), "item-4"),
	}

	// act
	result := expiredrequests.Project(history, expiredrequests.BuildQuery(fixtures.Now))

	// assert
	require.Equal(t, 2, result.Count)
	assert.Equal(t, "req-4", result.Requests[0].RequestID)
	assert.Equal(t, "req-1", result.Requests[1].RequestID)
	assert.Equal(t, []string{"item-1", "item-2"}, result.Requests[1].ItemIDs)
}
