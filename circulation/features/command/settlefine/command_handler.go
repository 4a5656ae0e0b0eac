package settlefine

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/payment"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// CommandHandler charges the fine through the payment gateway and then runs
// Query -> Unmarshal -> Decide -> Append with retry.
//
// The charge uses the fine id as idempotency key, so a handler run that fails after charging
// can be repeated without charging the patron twice.
type CommandHandler struct {
	eventStore   shell.EventStore
	gateway      payment.Gateway
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(eventStore shell.EventStore, gateway payment.Gateway, opts ...Option) CommandHandler {
	handler := CommandHandler{
		eventStore: eventStore,
		gateway:    gateway,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	filter := BuildEventFilter(command.FineID)

	history, err := shell.LookupHistory(ctx, h.eventStore, filter)
	if err != nil {
		return shell.HandlerResult{}, err
	}

	fine := core.ProjectFine(history, command.FineID)

	payable, err := CheckPayable(fine)
	if err != nil {
		return shell.HandlerResult{}, err
	}

	if !payable {
		return shell.HandlerResult{Idempotent: true, RetryAttempts: 1, LastErrorType: "none"}, nil
	}

	receipt, err := h.gateway.ChargeFine(ctx, payment.FineCharge{
		FineID:   fine.FineID,
		PatronID: fine.PatronID,
		Amount:   fine.Amount,
	})
	if err != nil {
		return shell.HandlerResult{}, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	return shell.HandleCommand(
		ctx,
		h.eventStore,
		filter,
		func(history core.DomainEvents) core.DecisionResult {
			return Decide(history, command, receipt.TransactionRef)
		},
		h.retryOptions...,
	)
}
