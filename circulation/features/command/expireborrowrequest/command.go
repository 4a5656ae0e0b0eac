package expireborrowrequest

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the sweep closing a request that was not checked out in time.
type Command struct {
	RequestID  core.RequestIDString
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ExpireBorrowRequest"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(requestID core.RequestIDString, occurredAt time.Time) Command {
	return Command{
		RequestID:  requestID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
