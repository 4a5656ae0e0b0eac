package extenddigitalborrow

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents a patron paying to keep a digital lease for another extension period.
type Command struct {
	BorrowID   core.BorrowIDString
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ExtendDigitalBorrow"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(borrowID core.BorrowIDString, occurredAt time.Time) Command {
	return Command{
		BorrowID:   borrowID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

// Charged describes the extension fee that was collected before deciding.
type Charged struct {
	ExtensionNumber int
	TransactionRef  string
	Fee             core.Money
}
