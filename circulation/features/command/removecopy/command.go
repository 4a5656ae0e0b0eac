package removecopy

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the intent to withdraw one copy of an item from circulation.
type Command struct {
	ItemID     core.ItemIDString
	InstanceID core.InstanceIDString
	Reason     string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "RemoveItemCopy"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(itemID core.ItemIDString, instanceID core.InstanceIDString, reason string, occurredAt time.Time) Command {
	return Command{
		ItemID:     itemID,
		InstanceID: instanceID,
		Reason:     reason,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
