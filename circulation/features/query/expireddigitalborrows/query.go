package expireddigitalborrows

import (
	"time"
)

const (
	queryType = "ExpiredDigitalBorrows"
)

// Query represents the intent to list the Active digital leases that have run out.
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
