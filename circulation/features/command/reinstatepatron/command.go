package reinstatepatron

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the intent to lift the suspension of a patron and reset the missed pickup counter.
type Command struct {
	PatronID   core.PatronIDString
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ReinstatePatron"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(patronID core.PatronIDString, occurredAt time.Time) Command {
	return Command{
		PatronID:   patronID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
