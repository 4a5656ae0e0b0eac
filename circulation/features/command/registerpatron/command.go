package registerpatron

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Command represents the intent to register a patron and issue a library card.
type Command struct {
	PatronID   core.PatronIDString
	Name       string
	Locale     string
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "RegisterPatron"
}

// BuildCommand creates a new Command with the provided parameters.
// locale is a BCP 47 tag; notices to the patron are rendered in it.
func BuildCommand(patronID core.PatronIDString, name string, locale string, occurredAt time.Time) Command {
	return Command{
		PatronID:   patronID,
		Name:       name,
		Locale:     locale,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
