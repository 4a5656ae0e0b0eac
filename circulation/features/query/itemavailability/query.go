package itemavailability

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

const (
	queryType = "ItemAvailability"
)

// Query represents the intent to look up the availability of one item.
// With a PatronID the result also carries the effective availability for that patron.
type Query struct {
	ItemID   core.ItemIDString
	PatronID core.PatronIDString
}

// BuildQuery creates a new Query for itemID.
func BuildQuery(itemID core.ItemIDString) Query {
	return Query{
		ItemID: itemID,
	}
}

// ForPatron returns a copy of the query that also computes the patron's effective availability.
func (q Query) ForPatron(patronID core.PatronIDString) Query {
	q.PatronID = patronID

	return q
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
