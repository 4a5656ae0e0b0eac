package settlefine

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents a patron paying an unpaid fine.
type Command struct {
	FineID     core.FineIDString
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "SettleFine"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(fineID core.FineIDString, occurredAt time.Time) Command {
	return Command{
		FineID:     fineID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
