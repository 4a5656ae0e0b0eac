package orchestrator

import (
	"context"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/expirefine"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/settlefine"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// SettleFineResult is the outcome of SettleFine.
type SettleFineResult struct {
	FineID         core.FineIDString
	TransactionRef string
	Amount         core.Money
	Idempotent     bool
}

// SettleFine charges an unpaid fine through the payment gateway and marks it paid.
// A gateway failure leaves the fine unpaid.
func (o *Orchestrator) SettleFine(ctx context.Context, fineID core.FineIDString) (SettleFineResult, error) {
	ctx = withCorrelation(ctx)
	command := settlefine.BuildCommand(fineID, o.now())
	handler := settlefine.NewCommandHandler(o.eventStore, o.gateway, settlefine.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return SettleFineResult{}, err
	}

	out := SettleFineResult{FineID: fineID, Idempotent: result.Idempotent}

	for _, event := range result.Events {
		if e, ok := event.(core.FinePaid); ok {
			out.TransactionRef = e.TransactionRef
			out.Amount = e.Amount
		}
	}

	return out, nil
}

// ExpireFineResult is the outcome of ExpireFine.
type ExpireFineResult struct {
	FineID     core.FineIDString
	Idempotent bool
}

// ExpireFine writes off an unpaid fine.
func (o *Orchestrator) ExpireFine(ctx context.Context, fineID core.FineIDString, reason string) (ExpireFineResult, error) {
	ctx = withCorrelation(ctx)
	command := expirefine.BuildCommand(fineID, reason, o.now())
	handler := expirefine.NewCommandHandler(o.eventStore, expirefine.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return ExpireFineResult{}, err
	}

	return ExpireFineResult{FineID: fineID, Idempotent: result.Idempotent}, nil
}
