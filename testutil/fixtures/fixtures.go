package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// Now is the fixed "current time" of all fixtures.
var Now = core.ToOccurredAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

const (
	DefaultGrade = "good"
	DefaultPrice = core.Money(2000)
)

// Policy returns the default circulation policy.
func Policy() core.CirculationPolicy {
	return core.DefaultCirculationPolicy()
}

// Ago returns Now minus d.
func Ago(d time.Duration) time.Time {
	return Now.Add(-d)
}

// Given appends events to es as one batch, regardless of what is already stored.
func Given(t testing.TB, es shell.EventStore, events ...core.DomainEvent) {
	t.Helper()

	ctx := context.Background()
	filter := eventstore.BuildEventFilter().MatchingAnyEvent()

	_, maxSequenceNumber, err := es.Query(ctx, filter)
	require.NoError(t, err, "error in arranging test data")

	storableEvents, err := shell.StorableEventsFrom(events, shell.CorrelationIDFrom(ctx))
	require.NoError(t, err, "error in arranging test data")

	require.NoError(t, es.Append(ctx, filter, maxSequenceNumber, storableEvents...), "error in arranging test data")
}

// History reads back every event of es.
func History(t testing.TB, es shell.EventStore) core.DomainEvents {
	t.Helper()

	history, err := shell.LookupHistory(context.Background(), es, eventstore.BuildEventFilter().MatchingAnyEvent())
	require.NoError(t, err)

	return history
}

func PatronRegistered(patronID core.PatronIDString) core.PatronRegistered {
	return core.PatronRegistered{
		PatronID:   patronID,
		Name:       "Patron " + patronID,
		Locale:     "en",
		OccurredAt: Ago(90 * 24 * time.Hour),
	}
}

func LibraryCardDeactivated(patronID core.PatronIDString) core.LibraryCardDeactivated {
	return core.LibraryCardDeactivated{PatronID: patronID, Reason: "expired", OccurredAt: Ago(24 * time.Hour)}
}

func PatronSuspended(patronID core.PatronIDString) core.PatronSuspended {
	return core.PatronSuspended{PatronID: patronID, Reason: "missed pickups", OccurredAt: Ago(24 * time.Hour)}
}

func CopyAdded(itemID core.ItemIDString, instanceID core.InstanceIDString) core.ItemCopyAddedToCirculation {
	return CopyAddedWith(itemID, instanceID, DefaultGrade, DefaultPrice)
}

func CopyAddedWith(
	itemID core.ItemIDString,
	instanceID core.InstanceIDString,
	grade string,
	price core.Money,
) core.ItemCopyAddedToCirculation {

	return core.ItemCopyAddedToCirculation{
		ItemID:         itemID,
		InstanceID:     instanceID,
		Barcode:        "BC-" + instanceID,
		ConditionGrade: grade,
		EstimatedPrice: price,
		Movement:       core.Move(core.BucketNone, core.BucketAvailable),
		OccurredAt:     Ago(60 * 24 * time.Hour),
	}
}

func ItemArchived(itemID core.ItemIDString) core.ItemArchived {
	return core.ItemArchived{ItemID: itemID, Reason: "weeded", OccurredAt: Ago(24 * time.Hour)}
}

// CheckedOut hands instanceID from the shelf to patronID. The DetailID derives from recordID.
func CheckedOut(
	recordID core.RecordIDString,
	patronID core.PatronIDString,
	itemID core.ItemIDString,
	instanceID core.InstanceIDString,
	dueDate time.Time,
) core.ItemCheckedOut {

	return core.ItemCheckedOut{
		RecordID:       recordID,
		DetailID:       core.DetailIDFor(recordID, instanceID),
		PatronID:       patronID,
		ItemID:         itemID,
		InstanceID:     instanceID,
		ConditionGrade: DefaultGrade,
		EstimatedPrice: DefaultPrice,
		DueDate:        core.ToOccurredAt(dueDate),
		Movement:       core.Move(core.BucketAvailable, core.BucketBorrowed),
		OccurredAt:     core.ToOccurredAt(dueDate.Add(-Policy().LoanPeriod)),
	}
}

func LoanMarkedOverdue(loan core.ItemCheckedOut) core.LoanMarkedOverdue {
	return core.LoanMarkedOverdue{
		DetailID:   loan.DetailID,
		PatronID:   loan.PatronID,
		ItemID:     loan.ItemID,
		DueDate:    loan.DueDate,
		OccurredAt: core.ToOccurredAt(loan.DueDate.Add(time.Hour)),
	}
}

func Returned(loan core.ItemCheckedOut, at time.Time) core.ItemReturned {
	return core.ItemReturned{
		DetailID:        loan.DetailID,
		RecordID:        loan.RecordID,
		PatronID:        loan.PatronID,
		ItemID:          loan.ItemID,
		InstanceID:      loan.InstanceID,
		ReturnCondition: loan.ConditionGrade,
		Movement:        core.Move(core.BucketBorrowed, core.BucketAvailable),
		OccurredAt:      core.ToOccurredAt(at),
	}
}

func RequestSubmitted(
	requestID core.RequestIDString,
	patronID core.PatronIDString,
	expirationDate time.Time,
	itemIDs ...core.ItemIDString,
) core.BorrowRequestSubmitted {

	return core.BorrowRequestSubmitted{
		RequestID:      requestID,
		PatronID:       patronID,
		ItemIDs:        itemIDs,
		RequestType:    "pickup",
		Locale:         "en",
		ExpirationDate: core.ToOccurredAt(expirationDate),
		OccurredAt:     core.ToOccurredAt(expirationDate.Add(-Policy().RequestExpiry)),
	}
}

func ItemRequested(
	requestID core.RequestIDString,
	patronID core.PatronIDString,
	itemID core.ItemIDString,
) core.ItemRequested {

	return core.ItemRequested{
		RequestID:  requestID,
		PatronID:   patronID,
		ItemID:     itemID,
		Movement:   core.Move(core.BucketAvailable, core.BucketRequested),
		OccurredAt: Ago(2 * time.Hour),
	}
}

func InstanceAssigned(
	requestID core.RequestIDString,
	patronID core.PatronIDString,
	itemID core.ItemIDString,
	instanceID core.InstanceIDString,
) core.InstanceAssignedToRequest {

	return core.InstanceAssignedToRequest{
		RequestID:  requestID,
		PatronID:   patronID,
		ItemID:     itemID,
		InstanceID: instanceID,
		OccurredAt: Ago(time.Hour),
	}
}

func RequestApproved(requestID core.RequestIDString, patronID core.PatronIDString) core.BorrowRequestApproved {
	return core.BorrowRequestApproved{RequestID: requestID, PatronID: patronID, OccurredAt: Ago(time.Hour)}
}

func RequestCancelled(requestID core.RequestIDString, patronID core.PatronIDString) core.BorrowRequestCancelled {
	return core.BorrowRequestCancelled{RequestID: requestID, PatronID: patronID, OccurredAt: Ago(30 * time.Minute)}
}

// ReservationPlaced places an organic reservation at placedAt.
func ReservationPlaced(
	reservationID core.ReservationIDString,
	patronID core.PatronIDString,
	itemID core.ItemIDString,
	placedAt time.Time,
) core.ReservationPlaced {

	return core.ReservationPlaced{
		ReservationID: reservationID,
		PatronID:      patronID,
		ItemID:        itemID,
		OccurredAt:    core.ToOccurredAt(placedAt),
	}
}

// AutoReservationPlaced places the reservation a borrow request falls back to.
func AutoReservationPlaced(
	requestID core.RequestIDString,
	patronID core.PatronIDString,
	itemID core.ItemIDString,
	placedAt time.Time,
) core.ReservationPlaced {

	return core.ReservationPlaced{
		ReservationID:              core.ReservationIDFor(requestID, itemID),
		PatronID:                   patronID,
		ItemID:                     itemID,
		RequestID:                  requestID,
		ReservedAfterRequestFailed: true,
		OccurredAt:                 core.ToOccurredAt(placedAt),
	}
}

// ReservationAssigned takes instanceID from the shelf for the reservation.
func ReservationAssigned(
	placed core.ReservationPlaced,
	instanceID core.InstanceIDString,
	code string,
	expiryDate time.Time,
) core.ReservationAssigned {

	return core.ReservationAssigned{
		ReservationID:   placed.ReservationID,
		PatronID:        placed.PatronID,
		ItemID:          placed.ItemID,
		InstanceID:      instanceID,
		ReservationCode: code,
		ExpiryDate:      core.ToOccurredAt(expiryDate),
		Movement:        core.Move(core.BucketAvailable, core.BucketReserved),
		OccurredAt:      core.ToOccurredAt(expiryDate.Add(-Policy().PickupWindow)),
	}
}

func FineAssessed(
	fineID core.FineIDString,
	patronID core.PatronIDString,
	itemID core.ItemIDString,
	amount core.Money,
) core.FineAssessed {

	return core.FineAssessed{
		FineID:       fineID,
		DetailID:     "detail-of-" + fineID,
		PatronID:     patronID,
		ItemID:       itemID,
		Kind:         core.FineKindOverdue,
		FinePolicyID: "overdue-default",
		Amount:       amount,
		OccurredAt:   Ago(24 * time.Hour),
	}
}

func DigitalBorrowRegistered(
	borrowID core.BorrowIDString,
	resourceID core.ResourceIDString,
	patronID core.PatronIDString,
	expiryDate time.Time,
) core.DigitalBorrowRegistered {

	return core.DigitalBorrowRegistered{
		BorrowID:       borrowID,
		ResourceID:     resourceID,
		PatronID:       patronID,
		TransactionRef: "tx-" + borrowID,
		ExpiryDate:     core.ToOccurredAt(expiryDate),
		OccurredAt:     core.ToOccurredAt(expiryDate.Add(-Policy().DigitalBorrowDuration())),
	}
}
