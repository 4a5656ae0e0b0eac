// Package eventstore holds the engine-agnostic parts of the event store:
// filters, storable events, consistency levels, logger contracts and errors.
//
// A filter selects the "dynamic event stream" a decision depends on. Appending with the
// same filter and the max sequence number returned by the query makes the append fail with
// ErrConcurrencyConflict if anything relevant changed in between:
//
//	filter := BuildEventFilter().
//		Matching().
//		AnyPredicateOf(P("ItemID", itemID), P("PatronID", patronID)).
//		Finalize()
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	if err != nil {
//		// handle error
//	}
//
//	// decide ...
//
//	err = store.Append(ctx, filter, maxSeq, newEvents...)
package eventstore
