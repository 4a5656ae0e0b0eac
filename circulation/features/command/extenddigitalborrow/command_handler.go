package extenddigitalborrow

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/payment"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// CommandHandler checks the lease, charges the extension fee and then runs
// Query -> Unmarshal -> Decide -> Append with retry.
//
// The charge is keyed by lease and extension number. Two concurrent extensions of the same
// lease share one charge and only one of them is recorded.
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
	filter := BuildEventFilter(command.BorrowID)

	history, err := shell.LookupHistory(ctx, h.eventStore, filter)
	if err != nil {
		return shell.HandlerResult{}, err
	}

	lease := core.ProjectDigitalBorrow(history, command.BorrowID)
	if err = CheckExtendable(lease, command.OccurredAt, h.policy); err != nil {
		return shell.HandlerResult{}, err
	}

	charge := payment.ExtensionCharge{
		BorrowID:        lease.BorrowID,
		PatronID:        lease.PatronID,
		ExtensionNumber: len(lease.Extensions) + 1,
		Amount:          h.policy.DigitalExtensionFee,
	}

	receipt, err := h.gateway.ChargeDigitalExtension(ctx, charge)
	if err != nil {
		return shell.HandlerResult{}, fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	charged := Charged{
		ExtensionNumber: charge.ExtensionNumber,
		TransactionRef:  receipt.TransactionRef,
		Fee:             charge.Amount,
	}

	return shell.HandleCommand(
		ctx,
		h.eventStore,
		filter,
		func(history core.DomainEvents) core.DecisionResult {
			return Decide(history, command, charged, h.policy)
		},
		h.retryOptions...,
	)
}
