package registerdigitalborrow

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents a patron starting a paid lease on a digital resource.
type Command struct {
	BorrowID       core.BorrowIDString
	ResourceID     core.ResourceIDString
	PatronID       core.PatronIDString
	TransactionRef string
	OccurredAt     core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "RegisterDigitalBorrow"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	borrowID core.BorrowIDString,
	resourceID core.ResourceIDString,
	patronID core.PatronIDString,
	transactionRef string,
	occurredAt time.Time,
) Command {

	return Command{
		BorrowID:       borrowID,
		ResourceID:     resourceID,
		PatronID:       patronID,
		TransactionRef: transactionRef,
		OccurredAt:     core.ToOccurredAt(occurredAt),
	}
}
