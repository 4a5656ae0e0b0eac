package core

import (
	"fmt"
)

// PatronState holds the eligibility signals of one patron.
type PatronState struct {
	PatronID           PatronIDString
	Name               string
	Locale             string
	Registered         bool
	CardActive         bool
	Suspended          bool
	TotalMissedPickUp  int
	activeLoans        map[DetailIDString]ItemIDString
	heldRequestItems   map[RequestIDString][]ItemIDString
	activeReservations map[ReservationIDString]ItemIDString
	unpaidFines        map[FineIDString]Money
}

// ProjectPatron folds the history into the state of patronID. Events of other patrons are ignored.
func ProjectPatron(history DomainEvents, patronID PatronIDString) PatronState { //nolint:gocognit,gocyclo,funlen
	s := PatronState{
		PatronID:           patronID,
		activeLoans:        map[DetailIDString]ItemIDString{},
		heldRequestItems:   map[RequestIDString][]ItemIDString{},
		activeReservations: map[ReservationIDString]ItemIDString{},
		unpaidFines:        map[FineIDString]Money{},
	}

	for _, event := range history {
		switch e := event.(type) {
		case PatronRegistered:
			if e.PatronID == patronID {
				s.Registered = true
				s.CardActive = true
				s.Name = e.Name
				s.Locale = e.Locale
			}

		case LibraryCardDeactivated:
			if e.PatronID == patronID {
				s.CardActive = false
			}

		case PatronSuspended:
			if e.PatronID == patronID {
				s.Suspended = true
			}

		case PatronReinstated:
			if e.PatronID == patronID {
				s.Suspended = false
				s.TotalMissedPickUp = 0
			}

		case ItemRequested:
			if e.PatronID == patronID {
				s.heldRequestItems[e.RequestID] = append(s.heldRequestItems[e.RequestID], e.ItemID)
			}

		case ItemRequestReleased:
			if e.PatronID == patronID {
				s.releaseRequestItem(e.RequestID, e.ItemID)
			}

		case ItemCheckedOut:
			if e.PatronID != patronID {
				continue
			}

			if e.RequestID != "" {
				s.releaseRequestItem(e.RequestID, e.ItemID)
			}

			s.activeLoans[e.DetailID] = e.ItemID

		case ItemReturned:
			if e.PatronID == patronID {
				delete(s.activeLoans, e.DetailID)
			}

		case LoanMarkedLost:
			if e.PatronID == patronID {
				delete(s.activeLoans, e.DetailID)
			}

		case ReservationPlaced:
			if e.PatronID == patronID {
				s.activeReservations[e.ReservationID] = e.ItemID
			}

		case ReservationCollected:
			if e.PatronID == patronID {
				delete(s.activeReservations, e.ReservationID)
			}

		case ReservationCancelled:
			if e.PatronID == patronID {
				delete(s.activeReservations, e.ReservationID)
			}

		case ReservationPickupExpired:
			if e.PatronID == patronID {
				delete(s.activeReservations, e.ReservationID)
				s.TotalMissedPickUp++
			}

		case FineAssessed:
			if e.PatronID == patronID {
				s.unpaidFines[e.FineID] = e.Amount
			}

		case FinePaid:
			if e.PatronID == patronID {
				delete(s.unpaidFines, e.FineID)
			}

		case FineExpired:
			if e.PatronID == patronID {
				delete(s.unpaidFines, e.FineID)
			}
		}
	}

	return s
}

func (s *PatronState) releaseRequestItem(requestID RequestIDString, itemID ItemIDString) {
	items := s.heldRequestItems[requestID]

	for i, held := range items {
		if held == itemID {
			items = append(items[:i:i], items[i+1:]...)
			break
		}
	}

	if len(items) == 0 {
		delete(s.heldRequestItems, requestID)
		return
	}

	s.heldRequestItems[requestID] = items
}

// OutstandingLoans is the number of copies the patron currently has.
func (s PatronState) OutstandingLoans() int {
	return len(s.activeLoans)
}

// HeldRequestItems is the number of units held for the patron's active requests.
func (s PatronState) HeldRequestItems() int {
	n := 0
	for _, items := range s.heldRequestItems {
		n += len(items)
	}

	return n
}

// Outstanding counts loans and held request units against the borrow limit.
func (s PatronState) Outstanding() int {
	return s.OutstandingLoans() + s.HeldRequestItems()
}

// HasActiveRequestFor reports whether a unit of itemID is held for one of the patron's requests.
func (s PatronState) HasActiveRequestFor(itemID ItemIDString) bool {
	for _, items := range s.heldRequestItems {
		for _, held := range items {
			if held == itemID {
				return true
			}
		}
	}

	return false
}

// HasActiveReservationFor reports whether the patron has a Pending or Assigned entry for itemID.
func (s PatronState) HasActiveReservationFor(itemID ItemIDString) bool {
	for _, reserved := range s.activeReservations {
		if reserved == itemID {
			return true
		}
	}

	return false
}

// ActiveReservations is the number of Pending or Assigned entries of the patron.
func (s PatronState) ActiveReservations() int {
	return len(s.activeReservations)
}

// UnpaidFines sums all Unpaid fines of the patron.
func (s PatronState) UnpaidFines() Money {
	var total Money
	for _, amount := range s.unpaidFines {
		total += amount
	}

	return total
}

// CheckStanding verifies the patron is registered, holds an active card and is not suspended.
func (s PatronState) CheckStanding() error {
	if !s.Registered {
		return NotFoundError(fmt.Sprintf("patron %s is not registered", s.PatronID))
	}

	if !s.CardActive {
		return EligibilityError("library card is not active")
	}

	if s.Suspended {
		return EligibilityError("patron is suspended")
	}

	return nil
}

// CheckBorrowLimit verifies that additional more items keep the patron within limit.
func (s PatronState) CheckBorrowLimit(additional int, limit int) error {
	if s.Outstanding()+additional > limit {
		return EligibilityError(fmt.Sprintf(
			"borrow limit exceeded: %d outstanding + %d requested > %d", s.Outstanding(), additional, limit,
		))
	}

	return nil
}
