package extendborrow

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the intent of a patron to keep a borrowed copy for another extension period.
type Command struct {
	DetailID   core.DetailIDString
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ExtendBorrow"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(detailID core.DetailIDString, occurredAt time.Time) Command {
	return Command{
		DetailID:   detailID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
