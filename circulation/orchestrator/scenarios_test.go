package orchestrator_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/selfcheckout"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/notification"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/orchestrator"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func Test_Checkout_LastCopyRace_OnlyOnePatronWins(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t,
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.CopyAdded("item-1", "inst-1"),
	)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)

	// act
	for i, patronID := range []string{"patron-1", "patron-2"} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = env.orchestrator.Checkout(ctx, orchestrator.FromShelf(patronID, selfcheckout.Copy{ItemID: "item-1", InstanceID: "inst-1"}))
		}()
	}

	wg.Wait()

	// assert
	succeeded := 0

	for _, err := range errs {
		if err == nil {
			succeeded++

			continue
		}

		assert.Contains(t, []string{core.KindStateConflict, core.KindInventoryViolation, core.KindReservationConflict}, core.KindOf(err))
	}

	assert.Equal(t, 1, succeeded)

	item := env.item(t, "item-1")
	assert.Equal(t, 0, item.Inventory.Available())
	assert.Equal(t, 1, item.Inventory.Borrowed())
	assert.NoError(t, item.CheckIntegrity())
}

func Test_Checkout_ConcurrentPatrons_KeepInventoryIntact(t *testing.T) {
	// arrange
	ctx := context.Background()
	events := []core.DomainEvent{
		fixtures.CopyAdded("item-1", "inst-1"),
		fixtures.CopyAdded("item-1", "inst-2"),
		fixtures.CopyAdded("item-1", "inst-3"),
	}

	for i := 1; i <= 6; i++ {
		events = append(events, fixtures.PatronRegistered(fmt.Sprintf("patron-%d", i)))
	}

	env := newTestEnv(t, events...)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	// act
	for i := 1; i <= 6; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			copyOnShelf := selfcheckout.Copy{ItemID: "item-1", InstanceID: fmt.Sprintf("inst-%d", i%3+1)}
			_, err := env.orchestrator.Checkout(ctx, orchestrator.FromShelf(fmt.Sprintf("patron-%d", i), copyOnShelf))

			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// assert
	item := env.item(t, "item-1")
	assert.LessOrEqual(t, succeeded, 3)
	assert.Equal(t, succeeded, item.Inventory.Borrowed())
	assert.Equal(t, 3, item.Inventory.Available()+item.Inventory.Borrowed())
	assert.NoError(t, item.CheckIntegrity())
}

func Test_OverdueSweep_MarksOverdueThenLost(t *testing.T) {
	// arrange
	ctx := context.Background()
	loan := fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Ago(24*time.Hour))
	env := newTestEnv(t, fixtures.PatronRegistered("patron-1"), fixtures.CopyAdded("item-1", "inst-1"), loan)

	// act
	first, err := env.orchestrator.RunOverdueSweep(ctx)
	require.NoError(t, err)
	_, afterFirst, _ := core.LocateLoan(fixtures.History(t, env.es), loan.DetailID)

	env.clock.Advance(30 * 24 * time.Hour)
	second, err := env.orchestrator.RunOverdueSweep(ctx)
	require.NoError(t, err)

	third, err := env.orchestrator.RunOverdueSweep(ctx)
	require.NoError(t, err)

	// assert
	assert.Equal(t, 1, first.Advanced)
	assert.Equal(t, core.LoanOverdue, afterFirst.Status)

	assert.Equal(t, 1, second.Advanced)
	assert.Equal(t, 0, third.Advanced)

	history := fixtures.History(t, env.es)
	_, afterSecond, _ := core.LocateLoan(history, loan.DetailID)
	assert.Equal(t, core.LoanLost, afterSecond.Status)

	lostFines := 0

	for _, event := range history {
		if fine, ok := event.(core.FineAssessed); ok && fine.Kind == core.FineKindLost {
			lostFines++
			assert.Equal(t, fixtures.DefaultPrice, fine.Amount)
		}
	}

	assert.Equal(t, 1, lostFines)

	item := core.ProjectItem(history, "item-1")
	assert.Equal(t, 0, item.Inventory.Borrowed())
	assert.NoError(t, item.CheckIntegrity())
	assert.Contains(t, env.notifier.Kinds(), notification.KindLoanLost)
}

func Test_PickupExpirySweep_SuspendsPatron_AfterTooManyMissedPickups(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t, fixtures.PatronRegistered("patron-1"), fixtures.CopyAdded("item-1", "inst-1"))
	policy := fixtures.Policy()

	missPickup := func() orchestrator.SweepReport {
		reserved, err := env.orchestrator.ReserveItem(ctx, "patron-1", "item-1")
		require.NoError(t, err)
		require.True(t, reserved.Assigned)

		env.clock.Advance(policy.PickupWindow + time.Hour)

		report, err := env.orchestrator.RunPickupExpirySweep(ctx)
		require.NoError(t, err)

		return report
	}

	for range policy.TotalMissedPickUpAllow - 1 {
		require.Equal(t, 1, missPickup().Advanced)
	}

	// act
	report := missPickup()

	// assert
	assert.Equal(t, 1, report.Advanced)

	profile, err := env.orchestrator.PatronProfile(ctx, "patron-1")
	require.NoError(t, err)
	assert.True(t, profile.Suspended)
	assert.Equal(t, policy.TotalMissedPickUpAllow, profile.TotalMissedPickUp)
	assert.Contains(t, env.notifier.Kinds(), notification.KindPatronSuspended)

	assert.Equal(t, 1, env.item(t, "item-1").Inventory.Available())

	_, err = env.orchestrator.SubmitBorrowRequest(ctx, "patron-1", []core.ItemIDString{"item-1"}, "pickup", "en")
	assert.Equal(t, core.KindEligibility, core.KindOf(err))
}

func Test_ExtendBorrow_Fails_WhenAnotherPatronWaits(t *testing.T) {
	// arrange
	ctx := context.Background()
	loan := fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Now.Add(7*24*time.Hour))
	env := newTestEnv(t,
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.CopyAdded("item-1", "inst-1"),
		loan,
	)

	reserved, err := env.orchestrator.ReserveItem(ctx, "patron-2", "item-1")
	require.NoError(t, err)
	require.False(t, reserved.Assigned)

	// act
	_, err = env.orchestrator.ExtendBorrow(ctx, loan.DetailID)

	// assert
	assert.Equal(t, core.KindReservationConflict, core.KindOf(err))

	_, state, found := core.LocateLoan(fixtures.History(t, env.es), loan.DetailID)
	require.True(t, found)
	assert.Equal(t, 0, state.TotalExtension)
	assert.Equal(t, loan.DueDate, state.DueDate)
}

func Test_ReturnItem_HandsUnitToWaitingPatron(t *testing.T) {
	// arrange
	ctx := context.Background()
	loan := fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Now.Add(7*24*time.Hour))
	env := newTestEnv(t,
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.CopyAdded("item-1", "inst-1"),
		loan,
	)

	reserved, err := env.orchestrator.ReserveItem(ctx, "patron-2", "item-1")
	require.NoError(t, err)
	require.False(t, reserved.Assigned)

	// act
	result, err := env.orchestrator.ReturnItem(ctx, loan.DetailID, "good", nil)

	// assert
	require.NoError(t, err)
	assert.False(t, result.ReturnedLate)
	assert.Empty(t, result.Fines)
	require.NotNil(t, result.HandedOver)
	assert.Equal(t, "patron-2", result.HandedOver.PatronID)
	assert.Equal(t, "inst-1", result.HandedOver.InstanceID)

	history := fixtures.History(t, env.es)
	assignments := 0

	for _, event := range history {
		switch e := event.(type) {
		case core.ReservationAssigned:
			assignments++
		case core.ItemReturned:
			assert.Equal(t, core.Move(core.BucketBorrowed, core.BucketReserved), e.Movement)
		}
	}

	assert.Equal(t, 1, assignments)

	item := core.ProjectItem(history, "item-1")
	assert.Equal(t, 0, item.Inventory.Available())
	assert.Equal(t, 1, item.Inventory.Reserved())
	assert.Equal(t, 0, item.Inventory.Borrowed())
	assert.NoError(t, item.CheckIntegrity())
}

func Test_Reservations_AreServedFirstComeFirstServed(t *testing.T) {
	// arrange
	ctx := context.Background()
	loan := fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Now.Add(7*24*time.Hour))
	env := newTestEnv(t,
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.PatronRegistered("patron-3"),
		fixtures.PatronRegistered("patron-4"),
		fixtures.CopyAdded("item-1", "inst-1"),
		loan,
	)

	waiting := []string{"patron-2", "patron-3", "patron-4"}
	for _, patronID := range waiting {
		_, err := env.orchestrator.ReserveItem(ctx, patronID, "item-1")
		require.NoError(t, err)
		env.clock.Advance(time.Hour)
	}

	// act
	served := make([]string, 0, len(waiting))
	detailID := loan.DetailID

	for range waiting {
		returned, err := env.orchestrator.ReturnItem(ctx, detailID, "good", nil)
		require.NoError(t, err)
		require.NotNil(t, returned.HandedOver)
		served = append(served, returned.HandedOver.PatronID)

		collected, err := env.orchestrator.Checkout(ctx, orchestrator.FromReservation(returned.HandedOver.ReservationCode))
		require.NoError(t, err)
		require.Len(t, collected.Loans, 1)
		detailID = collected.Loans[0].DetailID
	}

	// assert
	assert.Equal(t, waiting, served)
	assert.NoError(t, env.item(t, "item-1").CheckIntegrity())
}

func Test_RequestExpirySweep_ReleasesUnitsToTheQueue(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t,
		fixtures.PatronRegistered("patron-1"),
		fixtures.PatronRegistered("patron-2"),
		fixtures.CopyAdded("item-1", "inst-1"),
	)

	_, err := env.orchestrator.SubmitBorrowRequest(ctx, "patron-1", []core.ItemIDString{"item-1"}, "pickup", "en")
	require.NoError(t, err)
	reserved, err := env.orchestrator.ReserveItem(ctx, "patron-2", "item-1")
	require.NoError(t, err)
	require.False(t, reserved.Assigned)

	env.clock.Advance(fixtures.Policy().RequestExpiry + time.Hour)

	// act
	first, err := env.orchestrator.RunRequestExpirySweep(ctx)
	require.NoError(t, err)
	second, err := env.orchestrator.RunRequestExpirySweep(ctx)
	require.NoError(t, err)

	// assert
	assert.Equal(t, 1, first.Advanced)
	assert.Equal(t, 0, second.Advanced)

	item := env.item(t, "item-1")
	assert.Equal(t, 0, item.Inventory.Requested())
	assert.Equal(t, 1, item.Inventory.Reserved())
	assert.Contains(t, env.notifier.Kinds(), notification.KindRequestExpired)
	assert.Contains(t, env.notifier.Kinds(), notification.KindReservationReady)
}

func Test_DigitalExpirySweep_ExpiresLeasesOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	env := newTestEnv(t, fixtures.PatronRegistered("patron-1"))

	_, err := env.orchestrator.RegisterDigitalBorrow(ctx, "ebook-1", "patron-1", "tx-1")
	require.NoError(t, err)

	env.clock.Advance(fixtures.Policy().DigitalBorrowDuration() + time.Minute)

	// act
	first, err := env.orchestrator.RunDigitalExpirySweep(ctx)
	require.NoError(t, err)
	second, err := env.orchestrator.RunDigitalExpirySweep(ctx)
	require.NoError(t, err)

	// assert
	assert.Equal(t, orchestrator.SweepDigitalExpiry, first.Sweep)
	assert.Equal(t, 1, first.Advanced)
	assert.Equal(t, 0, first.Failed)
	assert.Equal(t, 0, second.Advanced)
	assert.Contains(t, env.notifier.Kinds(), notification.KindDigitalBorrowExpired)
}
