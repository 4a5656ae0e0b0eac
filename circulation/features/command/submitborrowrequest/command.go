package submitborrowrequest

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

const (
	commandType = "SubmitBorrowRequest"
)

// Command represents the intent of a patron to borrow the listed items.
type Command struct {
	RequestID   core.RequestIDString
	PatronID    core.PatronIDString
	ItemIDs     []core.ItemIDString
	RequestType string
	Locale      string
	OccurredAt  core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	requestID core.RequestIDString,
	patronID core.PatronIDString,
	itemIDs []core.ItemIDString,
	requestType string,
	locale string,
	occurredAt time.Time,
) Command {

	return Command{
		RequestID:   requestID,
		PatronID:    patronID,
		ItemIDs:     itemIDs,
		RequestType: requestType,
		Locale:      locale,
		OccurredAt:  core.ToOccurredAt(occurredAt),
	}
}
