package addcopy

import (
	"context"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// CommandHandler runs Query -> Unmarshal -> Decide -> Append with retry.
type CommandHandler struct {
	eventStore   shell.EventStore
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
func NewCommandHandler(eventStore shell.EventStore, policy core.CirculationPolicy, opts ...Option) CommandHandler {
	handler := CommandHandler{
		eventStore: eventStore,
		policy:     policy,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	return shell.HandleCommand(
		ctx,
		h.eventStore,
		BuildEventFilter(command.ItemID),
		func(history core.DomainEvents) core.DecisionResult {
			return Decide(history, command, h.policy)
		},
		h.retryOptions...,
	)
}
