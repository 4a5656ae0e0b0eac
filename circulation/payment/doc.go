// Package payment connects the circulation engine to the external payment gateway.
//
// The engine never moves money itself: fines and digital extension fees are charged through
// a Gateway, and digital borrows are only registered for transactions the gateway reports
// as settled. Every charge carries an idempotency key so that a retried use-case never
// charges twice.
package payment
