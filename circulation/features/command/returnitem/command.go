package returnitem

import (
	"slices"
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents a copy coming back over the return desk.
//
// ReservationCode is issued up front by the caller; it is used only if the copy goes
// straight to the next patron in the reservation queue.
type Command struct {
	DetailID        core.DetailIDString
	ReturnCondition string
	ConditionImages []string
	ReservationCode string
	OccurredAt      core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ReturnItem"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	detailID core.DetailIDString,
	returnCondition string,
	conditionImages []string,
	reservationCode string,
	occurredAt time.Time,
) Command {

	return Command{
		DetailID:        detailID,
		ReturnCondition: returnCondition,
		ConditionImages: slices.Clone(conditionImages),
		ReservationCode: reservationCode,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}
