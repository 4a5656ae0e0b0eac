package orchestrator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/query/expireddigitalborrows"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/query/expiredpickups"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/query/expiredrequests"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/query/overdueloans"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// Sweep names, used in logs and by the scheduler.
const (
	SweepOverdue       = "overdue"
	SweepPickupExpiry  = "pickup_expiry"
	SweepRequestExpiry = "request_expiry"
	SweepDigitalExpiry = "digital_expiry"
)

const (
	logMsgSweepCompleted       = "sweep completed"
	logMsgSweepCandidateFailed = "sweep candidate failed"

	logAttrSweep      = "sweep"
	logAttrCandidate  = "candidate"
	logAttrCandidates = "candidates"
	logAttrAdvanced   = "advanced"
	logAttrUnchanged  = "unchanged"
	logAttrFailed     = "failed"
)

// SweepReport summarizes one sweep run.
type SweepReport struct {
	Sweep      string
	Candidates int
	Advanced   int
	Unchanged  int
	Failed     int
}

// candidate is one due entity. Candidates sharing a key are processed one after another.
type candidate struct {
	id   string
	keys []string
	run  func(ctx context.Context) (idempotent bool, err error)
}

// RunOverdueSweep marks due loans Overdue and long overdue loans Lost.
func (o *Orchestrator) RunOverdueSweep(ctx context.Context) (SweepReport, error) {
	now := o.now()

	due, err := overdueloans.NewQueryHandler(o.eventStore).Handle(ctx, overdueloans.BuildQuery(now, o.policy.OverdueOrLostAfter()))
	if err != nil {
		return SweepReport{Sweep: SweepOverdue}, err
	}

	candidates := make([]candidate, 0, len(due.Loans))
	for _, loan := range due.Loans {
		candidates = append(candidates, candidate{
			id:   loan.DetailID,
			keys: sweepKeys(loan.PatronID, loan.ItemID),
			run: func(ctx context.Context) (bool, error) {
				result, err := o.AdvanceOverdueLoan(ctx, loan.DetailID)
				return result.Idempotent, err
			},
		})
	}

	return o.sweep(ctx, SweepOverdue, candidates), nil
}

// RunPickupExpirySweep expires Assigned reservations whose pickup deadline has passed.
func (o *Orchestrator) RunPickupExpirySweep(ctx context.Context) (SweepReport, error) {
	expired, err := expiredpickups.NewQueryHandler(o.eventStore).Handle(ctx, expiredpickups.BuildQuery(o.now()))
	if err != nil {
		return SweepReport{Sweep: SweepPickupExpiry}, err
	}

	candidates := make([]candidate, 0, len(expired.Pickups))
	for _, pickup := range expired.Pickups {
		candidates = append(candidates, candidate{
			id:   pickup.ReservationID,
			keys: sweepKeys(pickup.PatronID, pickup.ItemID),
			run: func(ctx context.Context) (bool, error) {
				result, err := o.ExpirePickup(ctx, pickup.ReservationID)
				return result.Idempotent, err
			},
		})
	}

	return o.sweep(ctx, SweepPickupExpiry, candidates), nil
}

// RunRequestExpirySweep expires Pending and Approved requests past their ExpirationDate.
func (o *Orchestrator) RunRequestExpirySweep(ctx context.Context) (SweepReport, error) {
	expired, err := expiredrequests.NewQueryHandler(o.eventStore).Handle(ctx, expiredrequests.BuildQuery(o.now()))
	if err != nil {
		return SweepReport{Sweep: SweepRequestExpiry}, err
	}

	candidates := make([]candidate, 0, len(expired.Requests))
	for _, request := range expired.Requests {
		candidates = append(candidates, candidate{
			id:   request.RequestID,
			keys: sweepKeys(request.PatronID, request.ItemIDs...),
			run: func(ctx context.Context) (bool, error) {
				result, err := o.ExpireBorrowRequest(ctx, request.RequestID)
				return result.Idempotent, err
			},
		})
	}

	return o.sweep(ctx, SweepRequestExpiry, candidates), nil
}

// RunDigitalExpirySweep expires digital leases past their expiry.
func (o *Orchestrator) RunDigitalExpirySweep(ctx context.Context) (SweepReport, error) {
	expired, err := expireddigitalborrows.NewQueryHandler(o.eventStore).Handle(ctx, expireddigitalborrows.BuildQuery(o.now()))
	if err != nil {
		return SweepReport{Sweep: SweepDigitalExpiry}, err
	}

	candidates := make([]candidate, 0, len(expired.Leases))
	for _, lease := range expired.Leases {
		candidates = append(candidates, candidate{
			id:   lease.BorrowID,
			keys: append(sweepKeys(lease.PatronID), "lease:"+lease.BorrowID),
			run: func(ctx context.Context) (bool, error) {
				result, err := o.ExpireDigitalBorrow(ctx, lease.BorrowID)
				return result.Idempotent, err
			},
		})
	}

	return o.sweep(ctx, SweepDigitalExpiry, candidates), nil
}

// sweepKeys names the item and patron streams a candidate writes to. The prefixes keep an
// item and a patron with the same id apart.
func sweepKeys(patronID core.PatronIDString, itemIDs ...core.ItemIDString) []string {
	keys := make([]string, 0, len(itemIDs)+1)
	keys = append(keys, "patron:"+patronID)

	for _, itemID := range itemIDs {
		keys = append(keys, "item:"+itemID)
	}

	return keys
}

// sweep runs the candidates with bounded parallelism. Each group of candidates sharing a
// key runs sequentially in one goroutine.
func (o *Orchestrator) sweep(ctx context.Context, name string, candidates []candidate) SweepReport {
	report := SweepReport{Sweep: name, Candidates: len(candidates)}

	var (
		mu    sync.Mutex
		group errgroup.Group
	)

	group.SetLimit(o.sweepParallelism)

	for _, batch := range groupByKeys(candidates) {
		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			for _, c := range batch {
				if ctx.Err() != nil {
					return nil
				}

				idempotent, err := c.run(ctx)

				mu.Lock()
				switch {
				case err != nil:
					report.Failed++
				case idempotent:
					report.Unchanged++
				default:
					report.Advanced++
				}
				mu.Unlock()

				if err != nil {
					o.warn(ctx, logMsgSweepCandidateFailed, logAttrSweep, name, logAttrCandidate, c.id, shell.LogAttrError, err.Error())
				}
			}

			return nil
		})
	}

	_ = group.Wait()

	o.info(ctx, logMsgSweepCompleted,
		logAttrSweep, name,
		logAttrCandidates, report.Candidates,
		logAttrAdvanced, report.Advanced,
		logAttrUnchanged, report.Unchanged,
		logAttrFailed, report.Failed,
	)

	return report
}

// groupByKeys partitions candidates so that candidates sharing any key land in the same
// batch. Batches and the candidates in them keep the input order.
func groupByKeys(candidates []candidate) [][]candidate {
	parent := make([]int, len(candidates))
	for i := range parent {
		parent[i] = i
	}

	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}

		return i
	}

	owner := map[string]int{}

	for i, c := range candidates {
		for _, key := range c.keys {
			if j, ok := owner[key]; ok {
				ri, rj := find(i), find(j)
				if ri != rj {
					if ri < rj {
						parent[rj] = ri
					} else {
						parent[ri] = rj
					}
				}

				continue
			}

			owner[key] = i
		}
	}

	index := map[int]int{}
	var batches [][]candidate

	for i, c := range candidates {
		root := find(i)

		pos, ok := index[root]
		if !ok {
			pos = len(batches)
			index[root] = pos
			batches = append(batches, nil)
		}

		batches[pos] = append(batches[pos], c)
	}

	return batches
}
