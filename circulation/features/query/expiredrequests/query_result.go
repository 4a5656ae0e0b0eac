package expiredrequests

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// RequestInfo is one active borrow request past its expiration date.
type RequestInfo struct {
	RequestID      core.RequestIDString
	PatronID       core.PatronIDString
	ItemIDs        []core.ItemIDString
	ExpirationDate time.Time
}

// ExpiredRequests represents the query result, ordered by expiration date (oldest first).
type ExpiredRequests struct {
	Requests []RequestInfo
	Count    int
}
