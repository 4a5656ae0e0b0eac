package registerdigitalborrow

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/payment"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// CommandHandler verifies the payment with the gateway and then runs
// Query -> Unmarshal -> Decide -> Append with retry.
type CommandHandler struct {
	eventStore   shell.EventStore
	gateway      payment.Gateway
	policy       core.CirculationPolicy
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
func NewCommandHandler(
	eventStore shell.EventStore,
	gateway payment.Gateway,
	policy core.CirculationPolicy,
	opts ...Option,
) CommandHandler {

	handler := CommandHandler{
		eventStore: eventStore,
		gateway:    gateway,
		policy:     policy,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	settled, err := h.gateway.TransactionSettled(ctx, command.TransactionRef)
	if err != nil {
		return shell.HandlerResult{}, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	if !settled {
		return shell.HandlerResult{}, core.EligibilityError("transaction " + command.TransactionRef + " is not settled")
	}

	return shell.HandleCommand(
		ctx,
		h.eventStore,
		BuildEventFilter(command.PatronID, command.BorrowID),
		func(history core.DomainEvents) core.DecisionResult {
			return Decide(history, command, h.policy)
		},
		h.retryOptions...,
	)
}
