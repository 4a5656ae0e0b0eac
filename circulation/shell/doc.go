// Package shell is the imperative shell around the circulation core.
//
// It converts between domain events and storable events, carries event metadata,
// runs the Query -> Decide -> Append cycle of command handlers with retries on
// concurrency conflicts, and provides the clock the workflows read the time from.
package shell
