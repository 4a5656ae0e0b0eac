package core

import (
	"slices"
	"time"
)

// ItemLifecycle replaces soft-delete flags: archived items behave as not found.
type ItemLifecycle string

const (
	ItemLifecycleUnknown  ItemLifecycle = ""
	ItemLifecycleActive   ItemLifecycle = "Active"
	ItemLifecycleArchived ItemLifecycle = "Archived"
)

// InstanceStatus is the physical whereabouts of one copy.
type InstanceStatus string

const (
	InstanceInShelf    InstanceStatus = "InShelf"
	InstanceBorrowed   InstanceStatus = "Borrowed"
	InstanceReserved   InstanceStatus = "Reserved"
	InstanceOutOfShelf InstanceStatus = "OutOfShelf"
	InstanceDamaged    InstanceStatus = "Damaged"
	InstanceLost       InstanceStatus = "Lost"
	InstanceWithdrawn  InstanceStatus = "Withdrawn"
)

// LoanStatus is the state of one borrow record detail.
type LoanStatus string

const (
	LoanBorrowing LoanStatus = "Borrowing"
	LoanOverdue   LoanStatus = "Overdue"
	LoanReturned  LoanStatus = "Returned"
	LoanLost      LoanStatus = "Lost"
)

// ReservationStatus is the state of one queue entry.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "Pending"
	ReservationStatusAssigned  ReservationStatus = "Assigned"
	ReservationStatusCollected ReservationStatus = "Collected"
	ReservationStatusExpired   ReservationStatus = "Expired"
	ReservationStatusCancelled ReservationStatus = "Cancelled"
)

type InstanceState struct {
	InstanceID     InstanceIDString
	Barcode        string
	Status         InstanceStatus
	ConditionGrade string
	EstimatedPrice Money
	RequestID      RequestIDString
	ReservationID  ReservationIDString
}

type Extension struct {
	ExtendedAt      time.Time
	PreviousDueDate time.Time
	NewDueDate      time.Time
}

// LoanState is the projection of one borrow record detail.
type LoanState struct {
	DetailID          DetailIDString
	RecordID          RecordIDString
	PatronID          PatronIDString
	ItemID            ItemIDString
	InstanceID        InstanceIDString
	RequestID         RequestIDString
	ReservationID     ReservationIDString
	Status            LoanStatus
	CheckedOutAt      time.Time
	DueDate           time.Time
	ConditionAtPickup string
	EstimatedPrice    Money
	TotalExtension    int
	Extensions        []Extension
	ReturnDate        time.Time
	ReturnCondition   string
	ConditionImages   []string
	Fines             map[FineKind]FineIDString
}

// IsActive reports whether the copy is still with the patron.
func (l LoanState) IsActive() bool {
	return l.Status == LoanBorrowing || l.Status == LoanOverdue
}

// ReservationState is the projection of one reservation queue entry.
type ReservationState struct {
	ReservationID              ReservationIDString
	PatronID                   PatronIDString
	ItemID                     ItemIDString
	RequestID                  RequestIDString
	ReservedAfterRequestFailed bool
	ReservationDate            time.Time
	Sequence                   int
	Status                     ReservationStatus
	ExpectedAvailableMin       time.Time
	ExpectedAvailableMax       time.Time
	InstanceID                 InstanceIDString
	ReservationCode            string
	ExpiryDate                 time.Time
}

// IsActive reports whether the entry still waits for or holds a copy.
func (r ReservationState) IsActive() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusAssigned
}

// RequestUnit is one unit of the item held for a borrow request.
type RequestUnit struct {
	RequestID  RequestIDString
	PatronID   PatronIDString
	InstanceID InstanceIDString
}

// ItemState is the projection of all events of one item.
//
// Violation holds the first inventory violation met while folding the history; the
// counters stay at their last consistent value. Deciders refuse to act on such an item.
type ItemState struct {
	ItemID       ItemIDString
	Lifecycle    ItemLifecycle
	Inventory    Inventory
	Instances    []InstanceState
	Loans        []LoanState
	Reservations []ReservationState
	RequestUnits []RequestUnit
	Violation    error
}

// ProjectItem folds the history into the state of itemID. Events of other items are ignored.
func ProjectItem(history DomainEvents, itemID ItemIDString) ItemState { //nolint:gocognit,gocyclo,funlen
	s := ItemState{ItemID: itemID}

	for _, event := range history {
		switch e := event.(type) {
		case ItemCopyAddedToCirculation:
			if e.ItemID != itemID {
				continue
			}

			if s.Lifecycle == ItemLifecycleUnknown {
				s.Lifecycle = ItemLifecycleActive
			}

			s.Instances = append(s.Instances, InstanceState{
				InstanceID:     e.InstanceID,
				Barcode:        e.Barcode,
				Status:         InstanceInShelf,
				ConditionGrade: e.ConditionGrade,
				EstimatedPrice: e.EstimatedPrice,
			})
			s.apply(e)

		case ItemCopyRemovedFromCirculation:
			if e.ItemID != itemID {
				continue
			}

			s.updateInstance(e.InstanceID, func(i *InstanceState) { i.Status = InstanceWithdrawn })
			s.apply(e)

		case ItemArchived:
			if e.ItemID == itemID {
				s.Lifecycle = ItemLifecycleArchived
			}

		case ItemRequested:
			if e.ItemID != itemID {
				continue
			}

			s.RequestUnits = append(s.RequestUnits, RequestUnit{RequestID: e.RequestID, PatronID: e.PatronID})
			s.apply(e)

		case InstanceAssignedToRequest:
			if e.ItemID != itemID {
				continue
			}

			for i := range s.RequestUnits {
				if s.RequestUnits[i].RequestID == e.RequestID && s.RequestUnits[i].InstanceID == "" {
					s.RequestUnits[i].InstanceID = e.InstanceID
					break
				}
			}

			s.updateInstance(e.InstanceID, func(i *InstanceState) {
				i.Status = InstanceOutOfShelf
				i.RequestID = e.RequestID
			})

		case ItemRequestReleased:
			if e.ItemID != itemID {
				continue
			}

			s.removeRequestUnit(e.RequestID)
			if e.InstanceID != "" {
				s.updateInstance(e.InstanceID, func(i *InstanceState) {
					i.Status = InstanceInShelf
					i.RequestID = ""
				})
			}
			s.apply(e)

		case ItemCheckedOut:
			if e.ItemID != itemID {
				continue
			}

			if e.RequestID != "" {
				s.removeRequestUnit(e.RequestID)
			}

			s.updateInstance(e.InstanceID, func(i *InstanceState) {
				i.Status = InstanceBorrowed
				i.RequestID = ""
				i.ReservationID = ""
			})
			s.Loans = append(s.Loans, LoanState{
				DetailID:          e.DetailID,
				RecordID:          e.RecordID,
				PatronID:          e.PatronID,
				ItemID:            e.ItemID,
				InstanceID:        e.InstanceID,
				RequestID:         e.RequestID,
				ReservationID:     e.ReservationID,
				Status:            LoanBorrowing,
				CheckedOutAt:      e.OccurredAt,
				DueDate:           e.DueDate,
				ConditionAtPickup: e.ConditionGrade,
				EstimatedPrice:    e.EstimatedPrice,
				Fines:             map[FineKind]FineIDString{},
			})
			s.apply(e)

		case LoanExtended:
			if e.ItemID != itemID {
				continue
			}

			s.updateLoan(e.DetailID, func(l *LoanState) {
				l.TotalExtension = e.ExtensionNumber
				l.DueDate = e.NewDueDate
				l.Extensions = append(l.Extensions, Extension{
					ExtendedAt:      e.OccurredAt,
					PreviousDueDate: e.PreviousDueDate,
					NewDueDate:      e.NewDueDate,
				})
			})

		case ItemReturned:
			if e.ItemID != itemID {
				continue
			}

			s.updateLoan(e.DetailID, func(l *LoanState) {
				l.Status = LoanReturned
				l.ReturnDate = e.OccurredAt
				l.ReturnCondition = e.ReturnCondition
				l.ConditionImages = e.ConditionImages
			})
			s.updateInstance(e.InstanceID, func(i *InstanceState) {
				i.ConditionGrade = e.ReturnCondition
				switch e.Movement.To {
				case BucketReserved:
					i.Status = InstanceReserved
				case BucketNone:
					i.Status = InstanceDamaged
				default:
					i.Status = InstanceInShelf
				}
			})
			s.apply(e)

		case LoanMarkedOverdue:
			if e.ItemID == itemID {
				s.updateLoan(e.DetailID, func(l *LoanState) { l.Status = LoanOverdue })
			}

		case LoanMarkedLost:
			if e.ItemID != itemID {
				continue
			}

			s.updateLoan(e.DetailID, func(l *LoanState) { l.Status = LoanLost })
			s.updateInstance(e.InstanceID, func(i *InstanceState) { i.Status = InstanceLost })
			s.apply(e)

		case ReservationPlaced:
			if e.ItemID != itemID {
				continue
			}

			s.Reservations = append(s.Reservations, ReservationState{
				ReservationID:              e.ReservationID,
				PatronID:                   e.PatronID,
				ItemID:                     e.ItemID,
				RequestID:                  e.RequestID,
				ReservedAfterRequestFailed: e.ReservedAfterRequestFailed,
				ReservationDate:            e.OccurredAt,
				Sequence:                   len(s.Reservations),
				Status:                     ReservationStatusPending,
				ExpectedAvailableMin:       e.ExpectedAvailableMin,
				ExpectedAvailableMax:       e.ExpectedAvailableMax,
			})

		case ReservationAssigned:
			if e.ItemID != itemID {
				continue
			}

			s.updateReservation(e.ReservationID, func(r *ReservationState) {
				r.Status = ReservationStatusAssigned
				r.InstanceID = e.InstanceID
				r.ReservationCode = e.ReservationCode
				r.ExpiryDate = e.ExpiryDate
			})
			s.updateInstance(e.InstanceID, func(i *InstanceState) {
				i.Status = InstanceReserved
				i.ReservationID = e.ReservationID
			})
			s.apply(e)

		case ReservationCollected:
			if e.ItemID == itemID {
				s.updateReservation(e.ReservationID, func(r *ReservationState) { r.Status = ReservationStatusCollected })
			}

		case ReservationCancelled:
			if e.ItemID != itemID {
				continue
			}

			s.endReservation(e.ReservationID, ReservationStatusCancelled, e.Movement)
			s.apply(e)

		case ReservationPickupExpired:
			if e.ItemID != itemID {
				continue
			}

			s.endReservation(e.ReservationID, ReservationStatusExpired, e.Movement)
			s.apply(e)

		case FineAssessed:
			if e.ItemID == itemID {
				s.updateLoan(e.DetailID, func(l *LoanState) { l.Fines[e.Kind] = e.FineID })
			}
		}
	}

	return s
}

func (s *ItemState) apply(e InventoryMovingEvent) {
	if s.Violation != nil {
		return
	}

	inventory, err := s.Inventory.Apply(e.InventoryMovement())
	if err != nil {
		s.Violation = err
		return
	}

	s.Inventory = inventory
}

func (s *ItemState) updateInstance(instanceID InstanceIDString, update func(i *InstanceState)) {
	for i := range s.Instances {
		if s.Instances[i].InstanceID == instanceID {
			update(&s.Instances[i])
			return
		}
	}
}

func (s *ItemState) updateLoan(detailID DetailIDString, update func(l *LoanState)) {
	for i := range s.Loans {
		if s.Loans[i].DetailID == detailID {
			update(&s.Loans[i])
			return
		}
	}
}

func (s *ItemState) updateReservation(reservationID ReservationIDString, update func(r *ReservationState)) {
	for i := range s.Reservations {
		if s.Reservations[i].ReservationID == reservationID {
			update(&s.Reservations[i])
			return
		}
	}
}

func (s *ItemState) removeRequestUnit(requestID RequestIDString) {
	idx := slices.IndexFunc(s.RequestUnits, func(u RequestUnit) bool { return u.RequestID == requestID })
	if idx >= 0 {
		s.RequestUnits = slices.Delete(s.RequestUnits, idx, idx+1)
	}
}

// endReservation closes an entry; a released unit puts its copy back on the shelf.
func (s *ItemState) endReservation(reservationID ReservationIDString, status ReservationStatus, m Movement) {
	var instanceID InstanceIDString

	s.updateReservation(reservationID, func(r *ReservationState) {
		r.Status = status
		instanceID = r.InstanceID
	})

	if instanceID != "" && m.To == BucketAvailable {
		s.updateInstance(instanceID, func(i *InstanceState) {
			i.Status = InstanceInShelf
			i.ReservationID = ""
		})
	}
}

// Exists reports whether the item was ever added to circulation.
func (s ItemState) Exists() bool {
	return s.Lifecycle != ItemLifecycleUnknown
}

// IsActive reports whether the item exists and is not archived.
func (s ItemState) IsActive() bool {
	return s.Lifecycle == ItemLifecycleActive
}

// CheckIntegrity returns the folding violation or a broken ledger invariant.
func (s ItemState) CheckIntegrity() error {
	if s.Violation != nil {
		return s.Violation
	}

	return s.Inventory.Check()
}

func (s ItemState) Instance(instanceID InstanceIDString) (InstanceState, bool) {
	for _, i := range s.Instances {
		if i.InstanceID == instanceID {
			return i, true
		}
	}

	return InstanceState{}, false
}

// FirstInShelfInstance returns the earliest added copy that is on the shelf.
func (s ItemState) FirstInShelfInstance() (InstanceState, bool) {
	for _, i := range s.Instances {
		if i.Status == InstanceInShelf {
			return i, true
		}
	}

	return InstanceState{}, false
}

func (s ItemState) Loan(detailID DetailIDString) (LoanState, bool) {
	for _, l := range s.Loans {
		if l.DetailID == detailID {
			return l, true
		}
	}

	return LoanState{}, false
}

// ActiveLoans returns the Borrowing and Overdue loans.
func (s ItemState) ActiveLoans() []LoanState {
	active := make([]LoanState, 0)

	for _, l := range s.Loans {
		if l.IsActive() {
			active = append(active, l)
		}
	}

	return active
}

func (s ItemState) Reservation(reservationID ReservationIDString) (ReservationState, bool) {
	for _, r := range s.Reservations {
		if r.ReservationID == reservationID {
			return r, true
		}
	}

	return ReservationState{}, false
}

// AssignedReservationByCode finds the Assigned entry holding code.
func (s ItemState) AssignedReservationByCode(code string) (ReservationState, bool) {
	for _, r := range s.Reservations {
		if r.Status == ReservationStatusAssigned && r.ReservationCode == code {
			return r, true
		}
	}

	return ReservationState{}, false
}

// PendingQueue returns the Pending entries in assignment order.
func (s ItemState) PendingQueue(ageBucket time.Duration) []ReservationState {
	return OrderPendingQueue(s.Reservations, ageBucket)
}

// QueueHead returns the next Pending entry to assign, skipping the entry with id skip.
func (s ItemState) QueueHead(ageBucket time.Duration, skip ReservationIDString) (ReservationState, bool) {
	for _, r := range s.PendingQueue(ageBucket) {
		if r.ReservationID != skip {
			return r, true
		}
	}

	return ReservationState{}, false
}

// PendingReservationsByOthers counts Pending entries of other patrons.
func (s ItemState) PendingReservationsByOthers(patronID PatronIDString) int {
	n := 0

	for _, r := range s.Reservations {
		if r.Status == ReservationStatusPending && r.PatronID != patronID {
			n++
		}
	}

	return n
}

// EffectiveAvailability is the number of available units patronID may take:
// available units minus the Pending reservations other patrons are waiting with.
func (s ItemState) EffectiveAvailability(patronID PatronIDString) int {
	return s.Inventory.Available() - s.PendingReservationsByOthers(patronID)
}

// HasActiveReservationBy reports whether patronID has a Pending or Assigned entry.
func (s ItemState) HasActiveReservationBy(patronID PatronIDString) bool {
	for _, r := range s.Reservations {
		if r.IsActive() && r.PatronID == patronID {
			return true
		}
	}

	return false
}

// HasActiveReservationByOthers reports whether another patron has a Pending or Assigned entry.
func (s ItemState) HasActiveReservationByOthers(patronID PatronIDString) bool {
	for _, r := range s.Reservations {
		if r.IsActive() && r.PatronID != patronID {
			return true
		}
	}

	return false
}

// HasActiveRequestBy reports whether a unit is held for a request of patronID.
func (s ItemState) HasActiveRequestBy(patronID PatronIDString) bool {
	return slices.ContainsFunc(s.RequestUnits, func(u RequestUnit) bool { return u.PatronID == patronID })
}

// IsBorrowedBy reports whether patronID currently has a copy of the item.
func (s ItemState) IsBorrowedBy(patronID PatronIDString) bool {
	return slices.ContainsFunc(s.Loans, func(l LoanState) bool { return l.IsActive() && l.PatronID == patronID })
}

// Forecast computes the expected availability window from the active loans.
func (s ItemState) Forecast() Forecast {
	return ForecastFromLoans(s.Loans)
}
