package approveborrowrequest

import (
	"context"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// CommandHandler resolves the items of the request and then runs
// Query -> Unmarshal -> Decide -> Append with retry.
type CommandHandler struct {
	eventStore   shell.EventStore
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
func NewCommandHandler(eventStore shell.EventStore, opts ...Option) CommandHandler {
	handler := CommandHandler{
		eventStore: eventStore,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	submitted, found, err := shell.FindFirst[core.BorrowRequestSubmitted](ctx, h.eventStore, "RequestID", command.RequestID)
	if err != nil {
		return shell.HandlerResult{}, err
	}

	if !found {
		return shell.HandlerResult{}, core.NotFoundError("borrow request " + command.RequestID)
	}

	return shell.HandleCommand(
		ctx,
		h.eventStore,
		BuildEventFilter(command.RequestID, submitted.ItemIDs),
		func(history core.DomainEvents) core.DecisionResult {
			return Decide(history, command)
		},
		h.retryOptions...,
	)
}
