package sweep

import (
	"github.com/AntonStoeckl/circulation-engine-go/circulation/orchestrator"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell/config"
)

// Jobs builds the four circulation sweeps of o with the intervals from cfg.
// A sweep with a non-positive interval is left out.
func Jobs(o *orchestrator.Orchestrator, cfg config.SweepConfig) []Job {
	all := []Job{
		{Name: orchestrator.SweepOverdue, Interval: cfg.OverdueInterval, Run: o.RunOverdueSweep},
		{Name: orchestrator.SweepPickupExpiry, Interval: cfg.PickupExpiryInterval, Run: o.RunPickupExpirySweep},
		{Name: orchestrator.SweepRequestExpiry, Interval: cfg.RequestExpiryInterval, Run: o.RunRequestExpirySweep},
		{Name: orchestrator.SweepDigitalExpiry, Interval: cfg.DigitalExpiryInterval, Run: o.RunDigitalExpirySweep},
	}

	jobs := make([]Job, 0, len(all))

	for _, job := range all {
		if job.Interval > 0 {
			jobs = append(jobs, job)
		}
	}

	return jobs
}
