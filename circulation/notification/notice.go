package notification

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// Kind names what a notice tells the patron.
type Kind string

const (
	KindRequestSubmitted      Kind = "request.submitted"
	KindRequestApproved       Kind = "request.approved"
	KindRequestCancelled      Kind = "request.cancelled"
	KindRequestExpired        Kind = "request.expired"
	KindItemCheckedOut        Kind = "loan.checked_out"
	KindLoanExtended          Kind = "loan.extended"
	KindItemReturned          Kind = "loan.returned"
	KindLoanOverdue           Kind = "loan.overdue"
	KindLoanLost              Kind = "loan.lost"
	KindReservationPlaced     Kind = "reservation.placed"
	KindReservationReady      Kind = "reservation.ready"
	KindReservationCancelled  Kind = "reservation.cancelled"
	KindPickupExpired         Kind = "reservation.pickup_expired"
	KindFineAssessed          Kind = "fine.assessed"
	KindFinePaid              Kind = "fine.paid"
	KindPatronSuspended       Kind = "patron.suspended"
	KindDigitalBorrowStarted  Kind = "digital.registered"
	KindDigitalBorrowExtended Kind = "digital.extended"
	KindDigitalBorrowExpired  Kind = "digital.expired"
)

// Parameter names used in Notice.Params.
const (
	ParamItemID          = "item_id"
	ParamRequestID       = "request_id"
	ParamReservationCode = "reservation_code"
	ParamDate            = "date"
	ParamAmount          = "amount"
	ParamFineKind        = "fine_kind"
	ParamResourceID      = "resource_id"
)

const dateLayout = "2006-01-02"

// Notice is one message to one patron.
type Notice struct {
	ID         uuid.UUID         `json:"id"`
	Kind       Kind              `json:"kind"`
	PatronID   string            `json:"patron_id"`
	Locale     language.Tag      `json:"locale"`
	Params     map[string]string `json:"params"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Notifier delivers notices.
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// LocaleLookup resolves the preferred locale of a patron.
type LocaleLookup func(patronID core.PatronIDString) language.Tag

// ParseLocale parses a stored locale, falling back to English for empty or malformed values.
func ParseLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		return language.English
	}

	return tag
}

// NoticesFrom maps the events of one decision to notices. Events patrons are not told about are skipped.
func NoticesFrom(events core.DomainEvents, localeOf LocaleLookup) []Notice {
	notices := make([]Notice, 0, len(events))

	for _, event := range events {
		kind, patronID, params, ok := describe(event)
		if !ok {
			continue
		}

		notices = append(notices, Notice{
			ID:         uuid.New(),
			Kind:       kind,
			PatronID:   patronID,
			Locale:     localeOf(patronID),
			Params:     params,
			OccurredAt: event.HasOccurredAt(),
		})
	}

	return notices
}

//nolint:funlen,gocyclo
func describe(event core.DomainEvent) (Kind, core.PatronIDString, map[string]string, bool) {
	switch e := event.(type) {
	case core.BorrowRequestSubmitted:
		return KindRequestSubmitted, e.PatronID, map[string]string{ParamRequestID: e.RequestID, ParamDate: date(e.ExpirationDate)}, true
	case core.BorrowRequestApproved:
		return KindRequestApproved, e.PatronID, map[string]string{ParamRequestID: e.RequestID}, true
	case core.BorrowRequestCancelled:
		return KindRequestCancelled, e.PatronID, map[string]string{ParamRequestID: e.RequestID}, true
	case core.BorrowRequestExpired:
		return KindRequestExpired, e.PatronID, map[string]string{ParamRequestID: e.RequestID}, true
	case core.ItemCheckedOut:
		return KindItemCheckedOut, e.PatronID, map[string]string{ParamItemID: e.ItemID, ParamDate: date(e.DueDate)}, true
	case core.LoanExtended:
		return KindLoanExtended, e.PatronID, map[string]string{ParamItemID: e.ItemID, ParamDate: date(e.NewDueDate)}, true
	case core.ItemReturned:
		return KindItemReturned, e.PatronID, map[string]string{ParamItemID: e.ItemID}, true
	case core.LoanMarkedOverdue:
		return KindLoanOverdue, e.PatronID, map[string]string{ParamItemID: e.ItemID, ParamDate: date(e.DueDate)}, true
	case core.LoanMarkedLost:
		return KindLoanLost, e.PatronID, map[string]string{ParamItemID: e.ItemID}, true
	case core.ReservationPlaced:
		return KindReservationPlaced, e.PatronID, map[string]string{ParamItemID: e.ItemID}, true
	case core.ReservationAssigned:
		return KindReservationReady, e.PatronID, map[string]string{
			ParamItemID:          e.ItemID,
			ParamReservationCode: e.ReservationCode,
			ParamDate:            date(e.ExpiryDate),
		}, true
	case core.ReservationCancelled:
		return KindReservationCancelled, e.PatronID, map[string]string{ParamItemID: e.ItemID}, true
	case core.ReservationPickupExpired:
		return KindPickupExpired, e.PatronID, map[string]string{ParamItemID: e.ItemID}, true
	case core.FineAssessed:
		return KindFineAssessed, e.PatronID, map[string]string{
			ParamItemID:   e.ItemID,
			ParamAmount:   strconv.FormatInt(int64(e.Amount), 10),
			ParamFineKind: string(e.Kind),
		}, true
	case core.FinePaid:
		return KindFinePaid, e.PatronID, map[string]string{ParamAmount: strconv.FormatInt(int64(e.Amount), 10)}, true
	case core.PatronSuspended:
		return KindPatronSuspended, e.PatronID, map[string]string{}, true
	case core.DigitalBorrowRegistered:
		return KindDigitalBorrowStarted, e.PatronID, map[string]string{ParamResourceID: e.ResourceID, ParamDate: date(e.ExpiryDate)}, true
	case core.DigitalBorrowExtended:
		return KindDigitalBorrowExtended, e.PatronID, map[string]string{ParamResourceID: e.ResourceID, ParamDate: date(e.NewExpiryDate)}, true
	case core.DigitalBorrowExpired:
		return KindDigitalBorrowExpired, e.PatronID, map[string]string{ParamResourceID: e.ResourceID}, true
	}

	return "", "", nil, false
}

func date(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
