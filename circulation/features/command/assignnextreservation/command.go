package assignnextreservation

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents handing a free shelf copy to the head of the reservation queue.
// InstanceID is optional; without it the earliest added shelf copy is used.
type Command struct {
	ItemID          core.ItemIDString
	InstanceID      core.InstanceIDString
	ReservationCode string
	OccurredAt      core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "AssignNextReservation"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	itemID core.ItemIDString,
	instanceID core.InstanceIDString,
	reservationCode string,
	occurredAt time.Time,
) Command {

	return Command{
		ItemID:          itemID,
		InstanceID:      instanceID,
		ReservationCode: reservationCode,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}
