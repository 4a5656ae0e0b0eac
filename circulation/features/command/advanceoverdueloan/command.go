package advanceoverdueloan

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the sweep moving a loan along Borrowing -> Overdue -> Lost.
type Command struct {
	DetailID   core.DetailIDString
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "AdvanceOverdueLoan"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(detailID core.DetailIDString, occurredAt time.Time) Command {
	return Command{
		DetailID:   detailID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
