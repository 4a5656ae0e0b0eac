package core

import (
	"slices"
	"time"
)

// OrderPendingQueue returns the Pending entries in assignment order:
//
//  1. age bucket (ReservationDate truncated to ageBucket), older first
//  2. auto-reservations placed after a failed request before organic ones
//  3. ReservationDate
//  4. placement order
//
// Without auto-reservations, or with ageBucket <= 0, this is strict FIFO.
func OrderPendingQueue(reservations []ReservationState, ageBucket time.Duration) []ReservationState {
	pending := make([]ReservationState, 0, len(reservations))

	for _, r := range reservations {
		if r.Status == ReservationStatusPending {
			pending = append(pending, r)
		}
	}

	slices.SortStableFunc(pending, func(a, b ReservationState) int {
		if c := bucketOf(a.ReservationDate, ageBucket).Compare(bucketOf(b.ReservationDate, ageBucket)); c != 0 {
			return c
		}

		if a.ReservedAfterRequestFailed != b.ReservedAfterRequestFailed {
			if a.ReservedAfterRequestFailed {
				return -1
			}

			return 1
		}

		if c := a.ReservationDate.Compare(b.ReservationDate); c != 0 {
			return c
		}

		return a.Sequence - b.Sequence
	})

	return pending
}

func bucketOf(t time.Time, ageBucket time.Duration) time.Time {
	if ageBucket <= 0 {
		return t
	}

	return t.UTC().Truncate(ageBucket)
}

// Forecast is the expected availability window of an item. It is empty if no copy is borrowed.
type Forecast struct {
	ExpectedAvailableMin time.Time
	ExpectedAvailableMax time.Time
}

func (f Forecast) IsEmpty() bool {
	return f.ExpectedAvailableMin.IsZero() && f.ExpectedAvailableMax.IsZero()
}

// ForecastFromLoans returns the earliest and latest due date of the active loans.
func ForecastFromLoans(loans []LoanState) Forecast {
	var f Forecast

	for _, l := range loans {
		if !l.IsActive() {
			continue
		}

		if f.ExpectedAvailableMin.IsZero() || l.DueDate.Before(f.ExpectedAvailableMin) {
			f.ExpectedAvailableMin = l.DueDate
		}

		if l.DueDate.After(f.ExpectedAvailableMax) {
			f.ExpectedAvailableMax = l.DueDate
		}
	}

	return f
}
