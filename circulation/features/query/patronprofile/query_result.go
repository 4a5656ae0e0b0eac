package patronprofile

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// PatronProfile represents the query result.
type PatronProfile struct {
	PatronID           core.PatronIDString
	Name               string
	Locale             string
	Registered         bool
	CardActive         bool
	Suspended          bool
	TotalMissedPickUp  int
	OutstandingLoans   int
	HeldRequestItems   int
	ActiveReservations int
	UnpaidFines        core.Money
}
