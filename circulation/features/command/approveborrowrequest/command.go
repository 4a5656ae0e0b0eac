package approveborrowrequest

import (
	"maps"
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the intent of staff to approve a request by assigning one copy per held item.
type Command struct {
	RequestID   core.RequestIDString
	Assignments map[core.ItemIDString]core.InstanceIDString
	OccurredAt  core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ApproveBorrowRequest"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	requestID core.RequestIDString,
	assignments map[core.ItemIDString]core.InstanceIDString,
	occurredAt time.Time,
) Command {

	return Command{
		RequestID:   requestID,
		Assignments: maps.Clone(assignments),
		OccurredAt:  core.ToOccurredAt(occurredAt),
	}
}
