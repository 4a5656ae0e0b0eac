package orchestrator

import (
	"context"
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/approveborrowrequest"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/cancelborrowrequest"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/expireborrowrequest"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/submitborrowrequest"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// ReservationRef points at a reservation placed or assigned as part of a use-case.
type ReservationRef struct {
	ReservationID   core.ReservationIDString
	PatronID        core.PatronIDString
	ItemID          core.ItemIDString
	InstanceID      core.InstanceIDString
	ReservationCode string
	ExpiryDate      time.Time
}

// SubmitBorrowRequestResult is the outcome of SubmitBorrowRequest.
type SubmitBorrowRequestResult struct {
	RequestID        core.RequestIDString
	ExpirationDate   time.Time
	HeldItemIDs      []core.ItemIDString
	AutoReservations []ReservationRef
}

// SubmitBorrowRequest opens a borrow request. Items without effective availability are
// auto-reserved instead of held.
func (o *Orchestrator) SubmitBorrowRequest(
	ctx context.Context,
	patronID core.PatronIDString,
	itemIDs []core.ItemIDString,
	requestType string,
	locale string,
) (SubmitBorrowRequestResult, error) {

	ctx = withCorrelation(ctx)
	command := submitborrowrequest.BuildCommand(o.ids.NewID(), patronID, itemIDs, requestType, locale, o.now())
	handler := submitborrowrequest.NewCommandHandler(o.eventStore, o.policy, submitborrowrequest.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return SubmitBorrowRequestResult{}, err
	}

	out := SubmitBorrowRequestResult{RequestID: command.RequestID}

	for _, event := range result.Events {
		switch e := event.(type) {
		case core.BorrowRequestSubmitted:
			out.ExpirationDate = e.ExpirationDate
		case core.ItemRequested:
			out.HeldItemIDs = append(out.HeldItemIDs, e.ItemID)
		case core.ReservationPlaced:
			out.AutoReservations = append(out.AutoReservations, ReservationRef{
				ReservationID: e.ReservationID,
				PatronID:      e.PatronID,
				ItemID:        e.ItemID,
			})
		}
	}

	return out, nil
}

// ApproveBorrowRequestResult is the outcome of ApproveBorrowRequest.
type ApproveBorrowRequestResult struct {
	RequestID  core.RequestIDString
	Idempotent bool
}

// ApproveBorrowRequest assigns a shelf copy to every held item of a Pending request.
func (o *Orchestrator) ApproveBorrowRequest(
	ctx context.Context,
	requestID core.RequestIDString,
	assignments map[core.ItemIDString]core.InstanceIDString,
) (ApproveBorrowRequestResult, error) {

	ctx = withCorrelation(ctx)
	command := approveborrowrequest.BuildCommand(requestID, assignments, o.now())
	handler := approveborrowrequest.NewCommandHandler(o.eventStore, approveborrowrequest.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return ApproveBorrowRequestResult{}, err
	}

	return ApproveBorrowRequestResult{RequestID: requestID, Idempotent: result.Idempotent}, nil
}

// ReleaseResult is the outcome of ending a request: the released items and the
// reservations that received one of the freed units.
type ReleaseResult struct {
	RequestID       core.RequestIDString
	ReleasedItemIDs []core.ItemIDString
	Assigned        []ReservationRef
	Idempotent      bool
}

// CancelBorrowRequest ends a Pending or Approved request and hands freed units to waiting patrons.
func (o *Orchestrator) CancelBorrowRequest(ctx context.Context, requestID core.RequestIDString, reason string) (ReleaseResult, error) {
	ctx = withCorrelation(ctx)
	command := cancelborrowrequest.BuildCommand(requestID, reason, o.now())
	handler := cancelborrowrequest.NewCommandHandler(o.eventStore, cancelborrowrequest.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return ReleaseResult{}, err
	}

	return o.afterRelease(ctx, requestID, result), nil
}

// ExpireBorrowRequest expires one request past its ExpirationDate. It is the per-candidate
// step of RunRequestExpirySweep.
func (o *Orchestrator) ExpireBorrowRequest(ctx context.Context, requestID core.RequestIDString) (ReleaseResult, error) {
	ctx = withCorrelation(ctx)
	command := expireborrowrequest.BuildCommand(requestID, o.now())
	handler := expireborrowrequest.NewCommandHandler(o.eventStore, expireborrowrequest.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return ReleaseResult{}, err
	}

	return o.afterRelease(ctx, requestID, result), nil
}

func (o *Orchestrator) afterRelease(ctx context.Context, requestID core.RequestIDString, result shell.HandlerResult) ReleaseResult {
	out := ReleaseResult{RequestID: requestID, Idempotent: result.Idempotent}

	for _, event := range result.Events {
		if e, ok := event.(core.ItemRequestReleased); ok {
			out.ReleasedItemIDs = append(out.ReleasedItemIDs, e.ItemID)
		}
	}

	out.Assigned = o.assignFreedUnits(ctx, out.ReleasedItemIDs)

	return out
}

// assignFreedUnits offers units that became available to the queue of each item.
// The use-case that freed them already succeeded, so failures are only logged.
func (o *Orchestrator) assignFreedUnits(ctx context.Context, itemIDs []core.ItemIDString) []ReservationRef {
	var assigned []ReservationRef

	for _, itemID := range itemIDs {
		ref, ok, err := o.assignNext(ctx, itemID, "")
		if err != nil {
			o.warn(ctx, "follow-up reservation assignment failed", "item_id", itemID, shell.LogAttrError, err.Error())

			continue
		}

		if ok {
			assigned = append(assigned, ref)
		}
	}

	return assigned
}
