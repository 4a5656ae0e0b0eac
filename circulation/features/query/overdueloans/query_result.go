package overdueloans

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// LoanInfo is one loan the overdue sweep has to advance.
type LoanInfo struct {
	DetailID core.DetailIDString
	ItemID   core.ItemIDString
	PatronID core.PatronIDString
	Status   core.LoanStatus
	DueDate  time.Time
	DueLost  bool
}

// OverdueLoans represents the query result, ordered by due date (oldest first).
type OverdueLoans struct {
	Loans []LoanInfo
	Count int
}
