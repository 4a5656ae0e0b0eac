package collectreservation

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents a patron presenting a reservation code at the pickup desk.
type Command struct {
	ReservationCode string
	RecordID        core.RecordIDString
	OccurredAt      core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "CollectReservation"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(reservationCode string, recordID core.RecordIDString, occurredAt time.Time) Command {
	return Command{
		ReservationCode: reservationCode,
		RecordID:        recordID,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}
