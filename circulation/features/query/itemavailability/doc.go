// Package itemavailability implements the Item Availability query use case.
//
// The query returns the inventory counters of one item, the expected availability window
// computed from its active loans and the Pending reservation queue in assignment order.
// It is a read-only projection and never appends events.
package itemavailability
