package core

// LocateLoan finds the checkout of detailID in history and projects its item.
func LocateLoan(history DomainEvents, detailID DetailIDString) (ItemState, LoanState, bool) {
	for _, event := range history {
		e, ok := event.(ItemCheckedOut)
		if !ok || e.DetailID != detailID {
			continue
		}

		item := ProjectItem(history, e.ItemID)
		loan, found := item.Loan(detailID)

		return item, loan, found
	}

	return ItemState{}, LoanState{}, false
}

// LocateReservation finds the placement of reservationID in history and projects its item.
func LocateReservation(history DomainEvents, reservationID ReservationIDString) (ItemState, ReservationState, bool) {
	for _, event := range history {
		e, ok := event.(ReservationPlaced)
		if !ok || e.ReservationID != reservationID {
			continue
		}

		item := ProjectItem(history, e.ItemID)
		reservation, found := item.Reservation(reservationID)

		return item, reservation, found
	}

	return ItemState{}, ReservationState{}, false
}
