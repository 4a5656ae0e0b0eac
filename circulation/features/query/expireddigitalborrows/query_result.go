package expireddigitalborrows

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// LeaseInfo is one Active digital lease that has run out.
type LeaseInfo struct {
	BorrowID   core.BorrowIDString
	ResourceID core.ResourceIDString
	PatronID   core.PatronIDString
	ExpiryDate time.Time
}

// ExpiredDigitalBorrows represents the query result, ordered by expiry date (oldest first).
type ExpiredDigitalBorrows struct {
	Leases []LeaseInfo
	Count  int
}
