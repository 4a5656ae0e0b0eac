package main

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/orchestrator"
)

type sweepFunc func(o *orchestrator.Orchestrator) func(ctx context.Context) (orchestrator.SweepReport, error)

var sweeps = map[string]sweepFunc{
	"overdue":  func(o *orchestrator.Orchestrator) func(context.Context) (orchestrator.SweepReport, error) { return o.RunOverdueSweep },
	"pickups":  func(o *orchestrator.Orchestrator) func(context.Context) (orchestrator.SweepReport, error) { return o.RunPickupExpirySweep },
	"requests": func(o *orchestrator.Orchestrator) func(context.Context) (orchestrator.SweepReport, error) { return o.RunRequestExpirySweep },
	"digital":  func(o *orchestrator.Orchestrator) func(context.Context) (orchestrator.SweepReport, error) { return o.RunDigitalExpirySweep },
}

func newSweepCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "sweep overdue|pickups|requests|digital",
		Short:     "Run one sweep once and print its report",
		ValidArgs: []string{"overdue", "pickups", "requests", "digital"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.close() }()

			report, err := sweeps[args[0]](a.orchestrator)(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep %s: %w", args[0], err)
			}

			out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))

			return err
		},
	}
}
