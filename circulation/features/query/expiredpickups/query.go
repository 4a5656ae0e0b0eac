package expiredpickups

import (
	"time"
)

const (
	queryType = "ExpiredPickups"
)

// Query represents the intent to list the assigned reservations whose pickup window has closed.
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
