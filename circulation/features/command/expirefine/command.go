package expirefine

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents staff writing off an unpaid fine.
type Command struct {
	FineID     core.FineIDString
	Reason     string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ExpireFine"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(fineID core.FineIDString, reason string, occurredAt time.Time) Command {
	return Command{
		FineID:     fineID,
		Reason:     reason,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
