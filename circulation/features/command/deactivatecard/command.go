package deactivatecard

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the intent to deactivate the library card of a patron.
type Command struct {
	PatronID   core.PatronIDString
	Reason     string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "DeactivateLibraryCard"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(patronID core.PatronIDString, reason string, occurredAt time.Time) Command {
	return Command{
		PatronID:   patronID,
		Reason:     reason,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
