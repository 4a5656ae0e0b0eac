package orchestrator

import (
	"context"
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/expiredigitalborrow"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/extenddigitalborrow"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/registerdigitalborrow"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/returndigitalborrow"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// DigitalBorrowResult is the outcome of the digital lease use-cases.
type DigitalBorrowResult struct {
	BorrowID        core.BorrowIDString
	ExpiryDate      time.Time
	ExtensionNumber int
	TransactionRef  string
	Idempotent      bool
}

// RegisterDigitalBorrow starts a digital lease paid with a settled transaction.
func (o *Orchestrator) RegisterDigitalBorrow(
	ctx context.Context,
	resourceID core.ResourceIDString,
	patronID core.PatronIDString,
	transactionRef string,
) (DigitalBorrowResult, error) {

	ctx = withCorrelation(ctx)
	command := registerdigitalborrow.BuildCommand(o.ids.NewID(), resourceID, patronID, transactionRef, o.now())
	handler := registerdigitalborrow.NewCommandHandler(o.eventStore, o.gateway, o.policy, registerdigitalborrow.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return DigitalBorrowResult{}, err
	}

	out := DigitalBorrowResult{BorrowID: command.BorrowID, TransactionRef: transactionRef, Idempotent: result.Idempotent}

	for _, event := range result.Events {
		if e, ok := event.(core.DigitalBorrowRegistered); ok {
			out.ExpiryDate = e.ExpiryDate
		}
	}

	return out, nil
}

// ExtendDigitalBorrow charges the extension fee and extends the lease.
func (o *Orchestrator) ExtendDigitalBorrow(ctx context.Context, borrowID core.BorrowIDString) (DigitalBorrowResult, error) {
	ctx = withCorrelation(ctx)
	command := extenddigitalborrow.BuildCommand(borrowID, o.now())
	handler := extenddigitalborrow.NewCommandHandler(o.eventStore, o.gateway, o.policy, extenddigitalborrow.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return DigitalBorrowResult{}, err
	}

	out := DigitalBorrowResult{BorrowID: borrowID, Idempotent: result.Idempotent}

	for _, event := range result.Events {
		if e, ok := event.(core.DigitalBorrowExtended); ok {
			out.ExpiryDate = e.NewExpiryDate
			out.ExtensionNumber = e.ExtensionNumber
			out.TransactionRef = e.TransactionRef
		}
	}

	return out, nil
}

// ReturnDigitalBorrow ends a lease before its expiry.
func (o *Orchestrator) ReturnDigitalBorrow(ctx context.Context, borrowID core.BorrowIDString) (DigitalBorrowResult, error) {
	ctx = withCorrelation(ctx)
	command := returndigitalborrow.BuildCommand(borrowID, o.now())
	handler := returndigitalborrow.NewCommandHandler(o.eventStore, returndigitalborrow.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return DigitalBorrowResult{}, err
	}

	return DigitalBorrowResult{BorrowID: borrowID, Idempotent: result.Idempotent}, nil
}

// ExpireDigitalBorrow ends a lease past its expiry. It is the per-candidate step of
// RunDigitalExpirySweep.
func (o *Orchestrator) ExpireDigitalBorrow(ctx context.Context, borrowID core.BorrowIDString) (DigitalBorrowResult, error) {
	ctx = withCorrelation(ctx)
	command := expiredigitalborrow.BuildCommand(borrowID, o.now())
	handler := expiredigitalborrow.NewCommandHandler(o.eventStore, expiredigitalborrow.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return DigitalBorrowResult{}, err
	}

	return DigitalBorrowResult{BorrowID: borrowID, Idempotent: result.Idempotent}, nil
}
