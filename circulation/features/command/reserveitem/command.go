package reserveitem

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents a patron joining the reservation queue of an item.
//
// ReservationCode is used only if a shelf copy can be assigned right away.
type Command struct {
	ReservationID   core.ReservationIDString
	PatronID        core.PatronIDString
	ItemID          core.ItemIDString
	ReservationCode string
	OccurredAt      core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ReserveItem"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	reservationID core.ReservationIDString,
	patronID core.PatronIDString,
	itemID core.ItemIDString,
	reservationCode string,
	occurredAt time.Time,
) Command {

	return Command{
		ReservationID:   reservationID,
		PatronID:        patronID,
		ItemID:          itemID,
		ReservationCode: reservationCode,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}
