package patronprofile

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

const (
	queryType = "PatronProfile"
)

// Query represents the intent to look up the circulation profile of a patron.
type Query struct {
	PatronID core.PatronIDString
}

// BuildQuery creates a new Query with the provided patron ID.
func BuildQuery(patronID core.PatronIDString) Query {
	return Query{
		PatronID: patronID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
