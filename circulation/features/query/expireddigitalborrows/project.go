package expireddigitalborrows

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Project lists the Active leases whose ExpiryDate is not after Now.
func Project(history core.DomainEvents, query Query) ExpiredDigitalBorrows {
	active := make(map[core.BorrowIDString]*LeaseInfo)

	for _, event := range history {
		switch e := event.(type) {
		case core.DigitalBorrowRegistered:
			active[e.BorrowID] = &LeaseInfo{
				BorrowID:   e.BorrowID,
				ResourceID: e.ResourceID,
				PatronID:   e.PatronID,
				ExpiryDate: e.ExpiryDate,
			}

		case core.DigitalBorrowExtended:
			if lease, ok := active[e.BorrowID]; ok {
				lease.ExpiryDate = e.NewExpiryDate
			}

		case core.DigitalBorrowReturned:
			delete(active, e.BorrowID)

		case core.DigitalBorrowExpired:
			delete(active, e.BorrowID)
		}
	}

	result := ExpiredDigitalBorrows{Leases: make([]LeaseInfo, 0)}

	for _, lease := range active {
		if !query.Now.Before(lease.ExpiryDate) {
			result.Leases = append(result.Leases, *lease)
		}
	}

	slices.SortFunc(result.Leases, func(a, b LeaseInfo) int {
		if c := a.ExpiryDate.Compare(b.ExpiryDate); c != 0 {
			return c
		}

		return cmp.Compare(a.BorrowID, b.BorrowID)
	})

	result.Count = len(result.Leases)

	return result
}

// BuildEventFilter creates the filter for querying the lifecycle of all digital leases.
func BuildEventFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.DigitalBorrowRegisteredEventType,
			core.DigitalBorrowExtendedEventType,
			core.DigitalBorrowReturnedEventType,
			core.DigitalBorrowExpiredEventType,
		).
		Finalize()
}
