package overdueloans

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Project lists the loans that are Borrowing past their due date or that reached the lost threshold.
//
// Query Logic:
//
//	GIVEN: All loan events
//	WHEN: OverdueLoans query is executed at Now
//	THEN: Borrowing loans with DueDate < Now are listed
//	THEN: Borrowing or Overdue loans with DueDate + LostAfter <= Now are listed with DueLost
//	EXCLUDES: Returned and Lost loans, Overdue loans below the lost threshold
func Project(history core.DomainEvents, query Query) OverdueLoans {
	loans := make(map[core.DetailIDString]*LoanInfo)

	for _, event := range history {
		switch e := event.(type) {
		case core.ItemCheckedOut:
			loans[e.DetailID] = &LoanInfo{
				DetailID: e.DetailID,
				ItemID:   e.ItemID,
				PatronID: e.PatronID,
				Status:   core.LoanBorrowing,
				DueDate:  e.DueDate,
			}

		case core.LoanExtended:
			if loan, ok := loans[e.DetailID]; ok {
				loan.DueDate = e.NewDueDate
			}

		case core.LoanMarkedOverdue:
			if loan, ok := loans[e.DetailID]; ok {
				loan.Status = core.LoanOverdue
			}

		case core.ItemReturned:
			delete(loans, e.DetailID)

		case core.LoanMarkedLost:
			delete(loans, e.DetailID)
		}
	}

	result := OverdueLoans{Loans: make([]LoanInfo, 0)}

	for _, loan := range loans {
		loan.DueLost = !query.Now.Before(loan.DueDate.Add(query.LostAfter))

		if loan.DueLost || (loan.Status == core.LoanBorrowing && query.Now.After(loan.DueDate)) {
			result.Loans = append(result.Loans, *loan)
		}
	}

	slices.SortFunc(result.Loans, func(a, b LoanInfo) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}

		return cmp.Compare(a.DetailID, b.DetailID)
	})

	result.Count = len(result.Loans)

	return result
}

// BuildEventFilter creates the filter for querying all loan lifecycle events.
func BuildEventFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.ItemCheckedOutEventType,
			core.LoanExtendedEventType,
			core.LoanMarkedOverdueEventType,
			core.ItemReturnedEventType,
			core.LoanMarkedLostEventType,
		).
		Finalize()
}
