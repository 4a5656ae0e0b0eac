package notification

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// messageArgs lists, per kind, which params fill the %[n] verbs of its message.
var messageArgs = map[Kind][]string{
	KindRequestSubmitted:      {ParamRequestID, ParamDate},
	KindRequestApproved:       {ParamRequestID},
	KindRequestCancelled:      {ParamRequestID},
	KindRequestExpired:        {ParamRequestID},
	KindItemCheckedOut:        {ParamItemID, ParamDate},
	KindLoanExtended:          {ParamItemID, ParamDate},
	KindItemReturned:          {ParamItemID},
	KindLoanOverdue:           {ParamItemID, ParamDate},
	KindLoanLost:              {ParamItemID},
	KindReservationPlaced:     {ParamItemID},
	KindReservationReady:      {ParamItemID, ParamReservationCode, ParamDate},
	KindReservationCancelled:  {ParamItemID},
	KindPickupExpired:         {ParamItemID},
	KindFineAssessed:          {ParamAmount, ParamItemID},
	KindFinePaid:              {ParamAmount},
	KindPatronSuspended:       {},
	KindDigitalBorrowStarted:  {ParamResourceID, ParamDate},
	KindDigitalBorrowExtended: {ParamResourceID, ParamDate},
	KindDigitalBorrowExpired:  {ParamResourceID},
}

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	en := map[Kind]string{
		KindRequestSubmitted:      "Your borrow request %[1]s was received. It is held until %[2]s.",
		KindRequestApproved:       "Your borrow request %[1]s is ready for pickup.",
		KindRequestCancelled:      "Your borrow request %[1]s was cancelled.",
		KindRequestExpired:        "Your borrow request %[1]s expired.",
		KindItemCheckedOut:        "You borrowed %[1]s. Please return it by %[2]s.",
		KindLoanExtended:          "Your loan of %[1]s was extended until %[2]s.",
		KindItemReturned:          "Thank you for returning %[1]s.",
		KindLoanOverdue:           "%[1]s was due on %[2]s. Please return it.",
		KindLoanLost:              "%[1]s is now considered lost.",
		KindReservationPlaced:     "You are in the queue for %[1]s.",
		KindReservationReady:      "%[1]s is ready for pickup with code %[2]s until %[3]s.",
		KindReservationCancelled:  "Your reservation of %[1]s was cancelled.",
		KindPickupExpired:         "You did not collect %[1]s in time.",
		KindFineAssessed:          "A fine of %.2[1]f was charged for %[2]s.",
		KindFinePaid:              "Your payment of %.2[1]f was received.",
		KindPatronSuspended:       "Your account was suspended after missed pickups.",
		KindDigitalBorrowStarted:  "You can read %[1]s until %[2]s.",
		KindDigitalBorrowExtended: "You can now read %[1]s until %[2]s.",
		KindDigitalBorrowExpired:  "Your access to %[1]s has ended.",
	}

	de := map[Kind]string{
		KindRequestSubmitted:      "Ihre Ausleihanfrage %[1]s ist eingegangen. Sie wird bis %[2]s vorgemerkt.",
		KindRequestApproved:       "Ihre Ausleihanfrage %[1]s liegt zur Abholung bereit.",
		KindRequestCancelled:      "Ihre Ausleihanfrage %[1]s wurde storniert.",
		KindRequestExpired:        "Ihre Ausleihanfrage %[1]s ist abgelaufen.",
		KindItemCheckedOut:        "Sie haben %[1]s ausgeliehen. Bitte geben Sie es bis %[2]s zurück.",
		KindLoanExtended:          "Ihre Ausleihe von %[1]s wurde bis %[2]s verlängert.",
		KindItemReturned:          "Danke für die Rückgabe von %[1]s.",
		KindLoanOverdue:           "%[1]s war am %[2]s fällig. Bitte geben Sie es zurück.",
		KindLoanLost:              "%[1]s gilt jetzt als verloren.",
		KindReservationPlaced:     "Sie stehen in der Warteschlange für %[1]s.",
		KindReservationReady:      "%[1]s liegt mit dem Code %[2]s bis %[3]s zur Abholung bereit.",
		KindReservationCancelled:  "Ihre Vormerkung von %[1]s wurde storniert.",
		KindPickupExpired:         "Sie haben %[1]s nicht rechtzeitig abgeholt.",
		KindFineAssessed:          "Für %[2]s wurde eine Gebühr von %.2[1]f berechnet.",
		KindFinePaid:              "Ihre Zahlung von %.2[1]f ist eingegangen.",
		KindPatronSuspended:       "Ihr Konto wurde nach versäumten Abholungen gesperrt.",
		KindDigitalBorrowStarted:  "Sie können %[1]s bis %[2]s lesen.",
		KindDigitalBorrowExtended: "Sie können %[1]s jetzt bis %[2]s lesen.",
		KindDigitalBorrowExpired:  "Ihr Zugang zu %[1]s ist beendet.",
	}

	for kind, msg := range en {
		_ = b.SetString(language.English, string(kind), msg)
	}

	for kind, msg := range de {
		_ = b.SetString(language.German, string(kind), msg)
	}

	return b
}

// Render produces the text of the notice in its locale, falling back to English.
// Amounts are given in minor units and printed with the locale's decimal separator.
func Render(notice Notice) string {
	printer := message.NewPrinter(notice.Locale, message.Catalog(messages))

	names := messageArgs[notice.Kind]
	args := make([]any, 0, len(names))

	for _, name := range names {
		value := notice.Params[name]

		if name == ParamAmount {
			minor, err := strconv.ParseInt(value, 10, 64)
			if err == nil {
				args = append(args, float64(minor)/100)
				continue
			}
		}

		args = append(args, value)
	}

	return printer.Sprintf(string(notice.Kind), args...)
}
