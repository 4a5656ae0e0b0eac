package core

import (
	"time"
)

type RequestStatus string

const (
	RequestStatusUnknown   RequestStatus = ""
	RequestStatusPending   RequestStatus = "Pending"
	RequestStatusApproved  RequestStatus = "Approved"
	RequestStatusCancelled RequestStatus = "Cancelled"
	RequestStatusExpired   RequestStatus = "Expired"
	RequestStatusFulfilled RequestStatus = "Fulfilled"
)

// RequestItem is one unit held for a request; InstanceID is set once approved.
type RequestItem struct {
	ItemID     ItemIDString
	InstanceID InstanceIDString
}

// RequestState is the projection of one borrow request.
type RequestState struct {
	RequestID      RequestIDString
	PatronID       PatronIDString
	Status         RequestStatus
	RequestType    string
	Locale         string
	SubmittedAt    time.Time
	ExpirationDate time.Time
	ItemIDs        []ItemIDString
	HeldItems      []RequestItem
	AutoReserved   []ReservationIDString
	CheckedOut     []DetailIDString
}

// ProjectRequest folds the history into the state of requestID.
func ProjectRequest(history DomainEvents, requestID RequestIDString) RequestState {
	s := RequestState{RequestID: requestID}

	for _, event := range history {
		switch e := event.(type) {
		case BorrowRequestSubmitted:
			if e.RequestID == requestID {
				s.PatronID = e.PatronID
				s.Status = RequestStatusPending
				s.RequestType = e.RequestType
				s.Locale = e.Locale
				s.SubmittedAt = e.OccurredAt
				s.ExpirationDate = e.ExpirationDate
				s.ItemIDs = e.ItemIDs
			}

		case ItemRequested:
			if e.RequestID == requestID {
				s.HeldItems = append(s.HeldItems, RequestItem{ItemID: e.ItemID})
			}

		case InstanceAssignedToRequest:
			if e.RequestID == requestID {
				for i := range s.HeldItems {
					if s.HeldItems[i].ItemID == e.ItemID && s.HeldItems[i].InstanceID == "" {
						s.HeldItems[i].InstanceID = e.InstanceID
						break
					}
				}
			}

		case BorrowRequestApproved:
			if e.RequestID == requestID {
				s.Status = RequestStatusApproved
			}

		case BorrowRequestCancelled:
			if e.RequestID == requestID {
				s.Status = RequestStatusCancelled
			}

		case BorrowRequestExpired:
			if e.RequestID == requestID {
				s.Status = RequestStatusExpired
			}

		case ItemRequestReleased:
			if e.RequestID == requestID {
				s.removeHeldItem(e.ItemID)
			}

		case ItemCheckedOut:
			if e.RequestID == requestID {
				s.removeHeldItem(e.ItemID)
				s.CheckedOut = append(s.CheckedOut, e.DetailID)
			}

		case BorrowRequestFulfilled:
			if e.RequestID == requestID {
				s.Status = RequestStatusFulfilled
			}

		case ReservationPlaced:
			if e.RequestID == requestID {
				s.AutoReserved = append(s.AutoReserved, e.ReservationID)
			}
		}
	}

	return s
}

func (s *RequestState) removeHeldItem(itemID ItemIDString) {
	for i := range s.HeldItems {
		if s.HeldItems[i].ItemID == itemID {
			s.HeldItems = append(s.HeldItems[:i:i], s.HeldItems[i+1:]...)
			return
		}
	}
}

// Exists reports whether the request was submitted.
func (s RequestState) Exists() bool {
	return s.Status != RequestStatusUnknown
}

// IsActive reports whether the request still holds units (Pending or Approved).
func (s RequestState) IsActive() bool {
	return s.Status == RequestStatusPending || s.Status == RequestStatusApproved
}

// IsPastExpiration reports whether now is after the ExpirationDate.
func (s RequestState) IsPastExpiration(now time.Time) bool {
	return now.After(s.ExpirationDate)
}

// HeldItemIDs returns the items with a held unit, in request order.
func (s RequestState) HeldItemIDs() []ItemIDString {
	ids := make([]ItemIDString, 0, len(s.HeldItems))
	for _, item := range s.HeldItems {
		ids = append(ids, item.ItemID)
	}

	return ids
}
