// Package core contains the domain of the circulation engine: domain events, the
// inventory ledger, projections of item/patron/request/fine/digital-borrow state,
// the reservation queue ordering and the fine policy engine.
//
// Everything in here is pure. Command features project the event history with the
// Project* functions, decide on a DecisionResult and let the shell append the events.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
