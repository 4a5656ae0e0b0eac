package expiredrequests

import (
	"time"
)

const (
	queryType = "ExpiredRequests"
)

// Query represents the intent to list the active borrow requests past their expiration date.
type Query struct {
	Now time.Time
}

// BuildQuery creates a new Query evaluated at now.
func BuildQuery(now time.Time) Query {
	return Query{
		Now: now,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
