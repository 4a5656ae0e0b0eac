package cancelreservation

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the withdrawal of a reservation by the patron or by staff.
//
// Only staff may cancel an Assigned reservation (StaffOverride). ReservationCode is used if the
// freed copy goes straight to the next entry in the queue.
type Command struct {
	ReservationID   core.ReservationIDString
	Reason          string
	StaffOverride   bool
	ReservationCode string
	OccurredAt      core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "CancelReservation"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	reservationID core.ReservationIDString,
	reason string,
	staffOverride bool,
	reservationCode string,
	occurredAt time.Time,
) Command {

	return Command{
		ReservationID:   reservationID,
		Reason:          reason,
		StaffOverride:   staffOverride,
		ReservationCode: reservationCode,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}
