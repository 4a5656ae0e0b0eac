package cancelborrowrequest

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the intent to withdraw a borrow request before it is fulfilled.
type Command struct {
	RequestID  core.RequestIDString
	Reason     string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "CancelBorrowRequest"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(requestID core.RequestIDString, reason string, occurredAt time.Time) Command {
	return Command{
		RequestID:  requestID,
		Reason:     reason,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
