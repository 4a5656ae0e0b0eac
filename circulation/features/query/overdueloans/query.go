package overdueloans

import (
	"time"
)

const (
	queryType = "OverdueLoans"
)

// Query represents the intent to list the loans the overdue sweep has to advance.
type Query struct {
	Now       time.Time
	LostAfter time.Duration
}

// BuildQuery creates a new Query evaluated at now.
func BuildQuery(now time.Time, lostAfter time.Duration) Query {
	return Query{
		Now:       now,
		LostAfter: lostAfter,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
