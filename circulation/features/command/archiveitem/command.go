package archiveitem

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the intent to end the lifecycle of an item.
type Command struct {
	ItemID     core.ItemIDString
	Reason     string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ArchiveItem"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(itemID core.ItemIDString, reason string, occurredAt time.Time) Command {
	return Command{
		ItemID:     itemID,
		Reason:     reason,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
