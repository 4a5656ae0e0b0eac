package selfcheckout

import (
	"slices"
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Copy identifies one physical copy the patron takes from the shelf.
type Copy struct {
	ItemID     core.ItemIDString
	InstanceID core.InstanceIDString
}

// Command represents a patron checking out copies taken from the shelf.
type Command struct {
	PatronID   core.PatronIDString
	RecordID   core.RecordIDString
	Copies     []Copy
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "SelfCheckout"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	patronID core.PatronIDString,
	recordID core.RecordIDString,
	copies []Copy,
	occurredAt time.Time,
) Command {

	return Command{
		PatronID:   patronID,
		RecordID:   recordID,
		Copies:     slices.Clone(copies),
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

// ItemIDs returns the items of all copies in command order.
func (c Command) ItemIDs() []core.ItemIDString {
	ids := make([]core.ItemIDString, 0, len(c.Copies))
	for _, cp := range c.Copies {
		ids = append(ids, cp.ItemID)
	}

	return ids
}
