package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/notification"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/orchestrator"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/payment"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/reservationcode"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore/memengine"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fakes"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

type sequence struct {
	mu sync.Mutex
	n  int
}

func (s *sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.n++

	return fmt.Sprintf("id-%d", s.n)
}

type testEnv struct {
	es           *memengine.EventStore
	clock        *shell.ManualClock
	notifier     *fakes.Notifier
	gateway      *fakes.PaymentGateway
	orchestrator *orchestrator.Orchestrator
}

// fixedIssuer hands out the same code every time, like a code reissued after its claim expired.
type fixedIssuer struct {
	mu       sync.Mutex
	code     string
	err      error
	released []string
}

func (i *fixedIssuer) Issue(_ context.Context) (string, error) {
	if i.err != nil {
		return "", i.err
	}

	return i.code, nil
}

func (i *fixedIssuer) Release(_ context.Context, code string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.released = append(i.released, code)

	return nil
}

func (i *fixedIssuer) Released() []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	return append([]string(nil), i.released...)
}

func newTestEnv(t *testing.T, events ...core.DomainEvent) testEnv {
	t.Helper()

	return newTestEnvWithIssuer(t, reservationcode.NewMemoryIssuer(), events...)
}

func newTestEnvWithIssuer(t *testing.T, issuer reservationcode.Issuer, events ...core.DomainEvent) testEnv {
	t.Helper()

	es := memengine.NewEventStore()
	if len(events) > 0 {
		fixtures.Given(t, es, events...)
	}

	env := testEnv{
		es:       es,
		clock:    shell.NewManualClock(fixtures.Now),
		notifier: fakes.NewNotifier(),
		gateway:  fakes.NewPaymentGateway("tx-1"),
	}

	env.orchestrator = orchestrator.New(
		es,
		fixtures.Policy(),
		env.gateway,
		orchestrator.WithClock(env.clock),
		orchestrator.WithIDGenerator(&sequence{}),
		orchestrator.WithCodeIssuer(issuer),
		orchestrator.WithNotifier(env.notifier),
	)

	return env
}

func (env testEnv) item(t *testing.T, itemID core.ItemIDString) core.ItemState {
	t.Helper()

	return core.ProjectItem(fixtures.History(t, env.es), itemID)
}

func Test_SubmitBorrowRequest_HoldsUnitsAndNotifiesInPatronLocale(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t,
		core.PatronRegistered{PatronID: "patron-1", Name: "Anna", Locale: "de", OccurredAt: fixtures.Ago(time.Hour)},
		fixtures.CopyAdded("item-1", "inst-1"),
	)

	// act
	result, err := env.orchestrator.SubmitBorrowRequest(ctx, "patron-1", []core.ItemIDString{"item-1"}, "pickup", "de")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "id-1", result.RequestID)
	assert.Equal(t, []core.ItemIDString{"item-1"}, result.HeldItemIDs)
	assert.Empty(t, result.AutoReservations)
	assert.Equal(t, fixtures.Now.Add(fixtures.Policy().RequestExpiry), result.ExpirationDate)

	assert.Equal(t, 1, env.item(t, "item-1").Inventory.Requested())

	notices := env.notifier.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, notification.KindRequestSubmitted, notices[0].Kind)
	assert.Equal(t, language.German, notices[0].Locale)
}

func Test_SubmitBorrowRequest_Fails_WhenPatronIsUnknown(t *testing.T) {
	// arrange
	env := newTestEnv(t, fixtures.CopyAdded("item-1", "inst-1"))

	// act
	_, err := env.orchestrator.SubmitBorrowRequest(context.Background(), "patron-9", []core.ItemIDString{"item-1"}, "pickup", "en")

	// assert
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
	assert.Empty(t, env.notifier.Notices())
}

func Test_RequestLifecycle_ApproveAndCheckout(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t, fixtures.PatronRegistered("patron-1"), fixtures.CopyAdded("item-1", "inst-1"))

	submitted, err := env.orchestrator.SubmitBorrowRequest(ctx, "patron-1", []core.ItemIDString{"item-1"}, "pickup", "en")
	require.NoError(t, err)

	_, err = env.orchestrator.ApproveBorrowRequest(ctx, submitted.RequestID, map[core.ItemIDString]core.InstanceIDString{"item-1": "inst-1"})
	require.NoError(t, err)

	// act
	checkout, err := env.orchestrator.Checkout(ctx, orchestrator.FromRequest(submitted.RequestID))

	// assert
	require.NoError(t, err)
	require.Len(t, checkout.Loans, 1)
	assert.Equal(t, "inst-1", checkout.Loans[0].InstanceID)
	assert.Equal(t, fixtures.Now.Add(fixtures.Policy().LoanPeriod), checkout.Loans[0].DueDate)

	item := env.item(t, "item-1")
	assert.Equal(t, 1, item.Inventory.Borrowed())
	assert.Equal(t, 0, item.Inventory.Requested())
	assert.NoError(t, item.CheckIntegrity())
}

func Test_CancelBorrowRequest_AssignsFreedUnitToWaitingPatron(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t,
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.CopyAdded("item-1", "inst-1"),
	)

	submitted, err := env.orchestrator.SubmitBorrowRequest(ctx, "patron-1", []core.ItemIDString{"item-1"}, "pickup", "en")
	require.NoError(t, err)

	reserved, err := env.orchestrator.ReserveItem(ctx, "patron-2", "item-1")
	require.NoError(t, err)
	require.False(t, reserved.Assigned)

	// act
	result, err := env.orchestrator.CancelBorrowRequest(ctx, submitted.RequestID, "changed my mind")

	// assert
	require.NoError(t, err)
	assert.Equal(t, []core.ItemIDString{"item-1"}, result.ReleasedItemIDs)
	require.Len(t, result.Assigned, 1)
	assert.Equal(t, "patron-2", result.Assigned[0].PatronID)
	assert.True(t, reservationcode.Valid(result.Assigned[0].ReservationCode))

	item := env.item(t, "item-1")
	assert.Equal(t, 0, item.Inventory.Available())
	assert.Equal(t, 1, item.Inventory.Reserved())
	assert.Contains(t, env.notifier.Kinds(), notification.KindReservationReady)
}

func Test_Checkout_Fails_WhenInputIsAmbiguous(t *testing.T) {
	// arrange
	env := newTestEnv(t)

	// act
	_, err := env.orchestrator.Checkout(context.Background(), orchestrator.CheckoutInput{RequestID: "req-1", ReservationCode: "K7Q2XW"})

	// assert
	assert.Equal(t, core.KindStateConflict, core.KindOf(err))
}

func Test_ExtendBorrow_MovesDueDate(t *testing.T) {
	// arrange
	ctx := context.Background()
	loan := fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Now.Add(2*24*time.Hour))
	env := newTestEnv(t, fixtures.PatronRegistered("patron-1"), fixtures.CopyAdded("item-1", "inst-1"), loan)

	// act
	result, err := env.orchestrator.ExtendBorrow(ctx, loan.DetailID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExtensionNumber)
	assert.Equal(t, loan.DueDate.Add(fixtures.Policy().ExtensionPeriod), result.NewDueDate)
	assert.Equal(t, []notification.Kind{notification.KindLoanExtended}, env.notifier.Kinds())
}

func Test_ReturnItem_AssessesOverdueFine_WhenReturnedLate(t *testing.T) {
	// arrange
	ctx := context.Background()
	loan := fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Ago(3*24*time.Hour))
	env := newTestEnv(t, fixtures.PatronRegistered("patron-1"), fixtures.CopyAdded("item-1", "inst-1"), loan)

	// act
	result, err := env.orchestrator.ReturnItem(ctx, loan.DetailID, "good", []string{"img/1.jpg"})

	// assert
	require.NoError(t, err)
	assert.True(t, result.ReturnedLate)
	assert.False(t, result.WrittenOff)
	require.Len(t, result.Fines, 1)
	assert.Equal(t, core.FineKindOverdue, result.Fines[0].Kind)
	assert.Equal(t, core.Money(150), result.Fines[0].Amount)
	assert.Nil(t, result.HandedOver)
	assert.Equal(t, 1, env.item(t, "item-1").Inventory.Available())
}

func Test_SettleFine_ChargesGatewayAndMarksFinePaid(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t, fixtures.PatronRegistered("patron-1"), fixtures.FineAssessed("fine-1", "patron-1", "item-1", 250))

	// act
	result, err := env.orchestrator.SettleFine(ctx, "fine-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "tx/fine/fine-1", result.TransactionRef)
	assert.Equal(t, core.Money(250), result.Amount)

	profile, err := env.orchestrator.PatronProfile(ctx, "patron-1")
	require.NoError(t, err)
	assert.Equal(t, core.Money(0), profile.UnpaidFines)
}

func Test_SettleFine_LeavesFineUnpaid_WhenGatewayFails(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t, fixtures.PatronRegistered("patron-1"), fixtures.FineAssessed("fine-1", "patron-1", "item-1", 250))
	env.gateway.FailWith(payment.ErrGatewayFailure)

	// act
	_, err := env.orchestrator.SettleFine(ctx, "fine-1")

	// assert
	assert.Equal(t, core.KindExternalDependency, core.KindOf(err))

	profile, profileErr := env.orchestrator.PatronProfile(ctx, "patron-1")
	require.NoError(t, profileErr)
	assert.Equal(t, core.Money(250), profile.UnpaidFines)
}

func Test_DigitalBorrow_RegisterExtendReturn(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t, fixtures.PatronRegistered("patron-1"))
	policy := fixtures.Policy()

	// act
	registered, err := env.orchestrator.RegisterDigitalBorrow(ctx, "ebook-1", "patron-1", "tx-1")
	require.NoError(t, err)
	extended, err := env.orchestrator.ExtendDigitalBorrow(ctx, registered.BorrowID)
	require.NoError(t, err)
	returned, err := env.orchestrator.ReturnDigitalBorrow(ctx, registered.BorrowID)
	require.NoError(t, err)

	// assert
	assert.Equal(t, fixtures.Now.Add(policy.DigitalBorrowDuration()), registered.ExpiryDate)
	assert.Equal(t, 1, extended.ExtensionNumber)
	assert.Equal(t, registered.ExpiryDate.Add(policy.DigitalExtension()), extended.ExpiryDate)
	assert.NotEmpty(t, extended.TransactionRef)
	assert.False(t, returned.Idempotent)
	assert.Len(t, env.gateway.Charges(), 1)
}

func Test_Notify_FailureDoesNotFailUseCase(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t, fixtures.PatronRegistered("patron-1"), fixtures.CopyAdded("item-1", "inst-1"))
	env.notifier.FailTimes(10, errors.New("broker down"))

	// act
	_, err := env.orchestrator.SubmitBorrowRequest(ctx, "patron-1", []core.ItemIDString{"item-1"}, "pickup", "en")

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, env.item(t, "item-1").Inventory.Requested())
}

func Test_Maintenance_RegisterPatronAndAddCopy(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t)

	// act
	_, err := env.orchestrator.RegisterPatron(ctx, "patron-1", "Anna", "de")
	require.NoError(t, err)
	_, err = env.orchestrator.AddItemCopy(ctx, "item-1", "inst-1", "BC-1", "good", 2000)
	require.NoError(t, err)
	again, err := env.orchestrator.AddItemCopy(ctx, "item-1", "inst-1", "BC-1", "good", 2000)
	require.NoError(t, err)

	// assert
	assert.True(t, again.Idempotent)

	availability, err := env.orchestrator.ItemAvailability(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 1, availability.Available)

	profile, err := env.orchestrator.PatronProfile(ctx, "patron-1")
	require.NoError(t, err)
	assert.Equal(t, "de", profile.Locale)
}

func Test_Checkout_CollectsCurrentReservation_WhenCodeWasIssuedBefore(t *testing.T) {
	// arrange
	ctx := context.Background()
	issuer := &fixedIssuer{code: "ABCDEF"}
	env := newTestEnvWithIssuer(t, issuer,
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.CopyAdded("item-1", "inst-1"),
	)

	first, err := env.orchestrator.ReserveItem(ctx, "patron-1", "item-1")
	require.NoError(t, err)
	require.True(t, first.Assigned)

	collected, err := env.orchestrator.Checkout(ctx, orchestrator.FromReservation("ABCDEF"))
	require.NoError(t, err)
	require.Len(t, collected.Loans, 1)

	_, err = env.orchestrator.ReturnItem(ctx, collected.Loans[0].DetailID, "good", nil)
	require.NoError(t, err)

	second, err := env.orchestrator.ReserveItem(ctx, "patron-2", "item-1")
	require.NoError(t, err)
	require.True(t, second.Assigned)
	require.Equal(t, "ABCDEF", second.Reservation.ReservationCode)

	// act
	result, err := env.orchestrator.Checkout(ctx, orchestrator.FromReservation("ABCDEF"))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Loans, 1)
	assert.Equal(t, "patron-2", result.Loans[0].PatronID)

	reservation, _ := env.item(t, "item-1").Reservation(second.Reservation.ReservationID)
	assert.Equal(t, core.ReservationStatusCollected, reservation.Status)
	assert.Contains(t, issuer.Released(), "ABCDEF")
}

func Test_ReturnItem_Succeeds_WhenCodeIssuerFailsAndNobodyWaits(t *testing.T) {
	// arrange
	ctx := context.Background()
	loan := fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Now.Add(24*time.Hour))
	env := newTestEnvWithIssuer(t, &fixedIssuer{err: errors.New("redis down")},
		fixtures.PatronRegistered("patron-1"),
		fixtures.CopyAdded("item-1", "inst-1"),
		loan,
	)

	// act
	result, err := env.orchestrator.ReturnItem(ctx, loan.DetailID, "good", nil)

	// assert
	require.NoError(t, err)
	assert.Nil(t, result.HandedOver)
	assert.Equal(t, 1, env.item(t, "item-1").Inventory.Available())
}

func Test_ReturnItem_Fails_WhenCodeIssuerFailsAndPatronWaits(t *testing.T) {
	// arrange
	ctx := context.Background()
	loan := fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Now.Add(24*time.Hour))
	env := newTestEnvWithIssuer(t, &fixedIssuer{err: errors.New("redis down")},
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.CopyAdded("item-1", "inst-1"),
		loan,
		fixtures.ReservationPlaced("res-1", "patron-2", "item-1", fixtures.Ago(time.Hour)),
	)

	// act
	_, err := env.orchestrator.ReturnItem(ctx, loan.DetailID, "good", nil)

	// assert
	assert.Equal(t, core.KindStateConflict, core.KindOf(err))
	assert.Equal(t, 1, env.item(t, "item-1").Inventory.Borrowed())
}

func Test_CancelReservation_Succeeds_ForPendingEntry_WhenCodeIssuerFails(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnvWithIssuer(t, &fixedIssuer{err: errors.New("redis down")},
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.CopyAdded("item-1", "inst-1"),
		fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Now.Add(24*time.Hour)),
	)

	reserved, err := env.orchestrator.ReserveItem(ctx, "patron-2", "item-1")
	require.NoError(t, err)
	require.False(t, reserved.Assigned)

	// act
	result, err := env.orchestrator.CancelReservation(ctx, reserved.Reservation.ReservationID, "no longer needed", false)

	// assert
	require.NoError(t, err)
	assert.Nil(t, result.HandedOver)

	reservation, _ := env.item(t, "item-1").Reservation(reserved.Reservation.ReservationID)
	assert.Equal(t, core.ReservationStatusCancelled, reservation.Status)
}

func Test_ExpirePickup_ReleasesUnit_WhenCodeIssuerFailsAndNobodyWaits(t *testing.T) {
	// arrange
	ctx := context.Background()
	placed := fixtures.ReservationPlaced("res-1", "patron-1", "item-1", fixtures.Ago(96*time.Hour))
	env := newTestEnvWithIssuer(t, &fixedIssuer{err: errors.New("redis down")},
		fixtures.PatronRegistered("patron-1"),
		fixtures.CopyAdded("item-1", "inst-1"),
		placed,
		fixtures.ReservationAssigned(placed, "inst-1", "CODE-1", fixtures.Ago(time.Hour)),
	)

	// act
	result, err := env.orchestrator.ExpirePickup(ctx, "res-1")

	// assert
	require.NoError(t, err)
	assert.Nil(t, result.HandedOver)

	item := env.item(t, "item-1")
	assert.Equal(t, 1, item.Inventory.Available())
	assert.Equal(t, 0, item.Inventory.Reserved())
}
