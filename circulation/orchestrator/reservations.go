package orchestrator

import (
	"context"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/assignnextreservation"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/cancelreservation"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/expirepickup"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/reserveitem"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/query/itemavailability"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// ReserveItemResult is the outcome of ReserveItem. Assigned is set when a free unit was
// handed over right away; the reservation is Pending in the queue otherwise.
type ReserveItemResult struct {
	Reservation ReservationRef
	Assigned    bool
}

// ReserveItem places a reservation on an item.
func (o *Orchestrator) ReserveItem(ctx context.Context, patronID core.PatronIDString, itemID core.ItemIDString) (ReserveItemResult, error) {
	ctx = withCorrelation(ctx)

	code := o.codeIfAvailable(ctx)

	command := reserveitem.BuildCommand(o.ids.NewID(), patronID, itemID, code, o.now())
	handler := reserveitem.NewCommandHandler(o.eventStore, o.policy, reserveitem.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	o.releaseUnusedCode(ctx, code, result.Events)

	if err != nil {
		return ReserveItemResult{}, err
	}

	out := ReserveItemResult{Reservation: ReservationRef{
		ReservationID: command.ReservationID,
		PatronID:      patronID,
		ItemID:        itemID,
	}}

	if assigned, ok := assignmentIn(result.Events); ok {
		out.Reservation = assigned
		out.Assigned = true
	}

	return out, nil
}

// CancelReservationResult is the outcome of CancelReservation. HandedOver is set when the
// unit of a cancelled Assigned reservation went to the next patron in the queue.
type CancelReservationResult struct {
	ReservationID core.ReservationIDString
	HandedOver    *ReservationRef
	Idempotent    bool
}

// CancelReservation cancels a reservation. Assigned reservations need staffOverride.
func (o *Orchestrator) CancelReservation(
	ctx context.Context,
	reservationID core.ReservationIDString,
	reason string,
	staffOverride bool,
) (CancelReservationResult, error) {

	ctx = withCorrelation(ctx)

	code := o.codeIfAvailable(ctx)

	command := cancelreservation.BuildCommand(reservationID, reason, staffOverride, code, o.now())
	handler := cancelreservation.NewCommandHandler(o.eventStore, o.policy, cancelreservation.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	o.releaseUnusedCode(ctx, code, result.Events)

	if err != nil {
		return CancelReservationResult{}, err
	}

	out := CancelReservationResult{ReservationID: reservationID, Idempotent: result.Idempotent}

	if next, ok := assignmentIn(result.Events); ok {
		out.HandedOver = &next
	}

	return out, nil
}

// AssignNextReservationResult is the outcome of AssignNextReservation.
// Assigned is false when nobody waits or no copy is free.
type AssignNextReservationResult struct {
	Reservation ReservationRef
	Assigned    bool
}

// AssignNextReservation hands a free copy of the item to the head of its queue.
// An empty instanceID picks the first shelf copy.
func (o *Orchestrator) AssignNextReservation(
	ctx context.Context,
	itemID core.ItemIDString,
	instanceID core.InstanceIDString,
) (AssignNextReservationResult, error) {

	ref, ok, err := o.assignNext(withCorrelation(ctx), itemID, instanceID)
	if err != nil {
		return AssignNextReservationResult{}, err
	}

	return AssignNextReservationResult{Reservation: ref, Assigned: ok}, nil
}

func (o *Orchestrator) assignNext(ctx context.Context, itemID core.ItemIDString, instanceID core.InstanceIDString) (ReservationRef, bool, error) {
	code, err := o.issueCode(ctx)
	if err != nil {
		return ReservationRef{}, false, err
	}

	command := assignnextreservation.BuildCommand(itemID, instanceID, code, o.now())
	handler := assignnextreservation.NewCommandHandler(o.eventStore, o.policy, assignnextreservation.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	o.releaseUnusedCode(ctx, code, result.Events)

	if err != nil {
		return ReservationRef{}, false, err
	}

	ref, ok := assignmentIn(result.Events)

	return ref, ok, nil
}

// PickupExpiryResult is the outcome of expiring one missed pickup.
type PickupExpiryResult struct {
	ReservationID   core.ReservationIDString
	HandedOver      *ReservationRef
	PatronSuspended bool
	Idempotent      bool
}

// ExpirePickup expires one Assigned reservation past its pickup deadline. It is the
// per-candidate step of RunPickupExpirySweep.
func (o *Orchestrator) ExpirePickup(ctx context.Context, reservationID core.ReservationIDString) (PickupExpiryResult, error) {
	ctx = withCorrelation(ctx)

	code := o.codeIfAvailable(ctx)

	command := expirepickup.BuildCommand(reservationID, code, o.now())
	handler := expirepickup.NewCommandHandler(o.eventStore, o.policy, expirepickup.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	o.releaseUnusedCode(ctx, code, result.Events)

	if err != nil {
		return PickupExpiryResult{}, err
	}

	out := PickupExpiryResult{ReservationID: reservationID, Idempotent: result.Idempotent}

	for _, event := range result.Events {
		if _, ok := event.(core.PatronSuspended); ok {
			out.PatronSuspended = true
		}
	}

	if next, ok := assignmentIn(result.Events); ok {
		out.HandedOver = &next
	}

	return out, nil
}

// ItemAvailability reports the counters, the forecast and the ordered queue of an item.
func (o *Orchestrator) ItemAvailability(ctx context.Context, itemID core.ItemIDString) (itemavailability.ItemAvailability, error) {
	handler := itemavailability.NewQueryHandler(o.eventStore, o.policy)

	return handler.Handle(ctx, itemavailability.BuildQuery(itemID))
}

func assignmentIn(events core.DomainEvents) (ReservationRef, bool) {
	for _, event := range events {
		if e, ok := event.(core.ReservationAssigned); ok {
			return ReservationRef{
				ReservationID:   e.ReservationID,
				PatronID:        e.PatronID,
				ItemID:          e.ItemID,
				InstanceID:      e.InstanceID,
				ReservationCode: e.ReservationCode,
				ExpiryDate:      e.ExpiryDate,
			}, true
		}
	}

	return ReservationRef{}, false
}
