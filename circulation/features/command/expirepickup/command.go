package expirepickup

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the sweep closing an Assigned reservation whose pickup window has passed.
type Command struct {
	ReservationID   core.ReservationIDString
	ReservationCode string
	OccurredAt      core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ExpirePickup"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(reservationID core.ReservationIDString, reservationCode string, occurredAt time.Time) Command {
	return Command{
		ReservationID:   reservationID,
		ReservationCode: reservationCode,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}
