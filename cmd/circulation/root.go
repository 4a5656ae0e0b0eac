package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile    string
	policyFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "circulation",
		Short: "Library circulation engine",
		Long: `circulation runs the library circulation engine: the sweep scheduler, the notification
retry worker and the health endpoint, one-shot sweeps and the event store migration.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load before reading the configuration")
	cmd.PersistentFlags().StringVar(&opts.policyFile, "policy-file", "", "YAML circulation policy file (defaults apply when empty)")

	cmd.AddCommand(
		newServeCmd(opts),
		newSweepCmd(opts),
		newMigrateCmd(opts),
	)

	return cmd
}
