package checkoutrequest

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the hand-over of the copies assigned to an approved request.
type Command struct {
	RequestID  core.RequestIDString
	RecordID   core.RecordIDString
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "CheckoutRequest"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(requestID core.RequestIDString, recordID core.RecordIDString, occurredAt time.Time) Command {
	return Command{
		RequestID:  requestID,
		RecordID:   recordID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
