package addcopy

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

const (
	commandType = "AddItemCopy"
)

// Command represents the intent to put a new copy of an item into circulation.
type Command struct {
	ItemID         core.ItemIDString
	InstanceID     core.InstanceIDString
	Barcode        string
	ConditionGrade string
	EstimatedPrice core.Money
	OccurredAt     core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	itemID core.ItemIDString,
	instanceID core.InstanceIDString,
	barcode string,
	conditionGrade string,
	estimatedPrice core.Money,
	occurredAt time.Time,
) Command {

	return Command{
		ItemID:         itemID,
		InstanceID:     instanceID,
		Barcode:        barcode,
		ConditionGrade: conditionGrade,
		EstimatedPrice: estimatedPrice,
		OccurredAt:     core.ToOccurredAt(occurredAt),
	}
}
