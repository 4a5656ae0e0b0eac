package expiredrequests

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Project lists the Pending or Approved borrow requests whose ExpirationDate lies before Now.
func Project(history core.DomainEvents, query Query) ExpiredRequests {
	active := make(map[core.RequestIDString]*RequestInfo)

	for _, event := range history {
		switch e := event.(type) {
		case core.BorrowRequestSubmitted:
			active[e.RequestID] = &RequestInfo{
				RequestID:      e.RequestID,
				PatronID:       e.PatronID,
				ItemIDs:        slices.Clone(e.ItemIDs),
				ExpirationDate: e.ExpirationDate,
			}

		case core.BorrowRequestCancelled:
			delete(active, e.RequestID)

		case core.BorrowRequestExpired:
			delete(active, e.RequestID)

		case core.BorrowRequestFulfilled:
			delete(active, e.RequestID)
		}
	}

	result := ExpiredRequests{Requests: make([]RequestInfo, 0)}

	for _, request := range active {
		if query.Now.After(request.ExpirationDate) {
			result.Requests = append(result.Requests, *request)
		}
	}

	slices.SortFunc(result.Requests, func(a, b RequestInfo) int {
		if c := a.ExpirationDate.Compare(b.ExpirationDate); c != 0 {
			return c
		}

		return cmp.Compare(a.RequestID, b.RequestID)
	})

	result.Count = len(result.Requests)

	return result
}

// BuildEventFilter creates the filter for querying the lifecycle of all borrow requests.
func BuildEventFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.BorrowRequestSubmittedEventType,
			core.BorrowRequestCancelledEventType,
			core.BorrowRequestExpiredEventType,
			core.BorrowRequestFulfilledEventType,
		).
		Finalize()
}
