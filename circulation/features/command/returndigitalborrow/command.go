package returndigitalborrow

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents a patron ending a digital lease before it runs out.
type Command struct {
	BorrowID   core.BorrowIDString
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ReturnDigitalBorrow"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(borrowID core.BorrowIDString, occurredAt time.Time) Command {
	return Command{
		BorrowID:   borrowID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
