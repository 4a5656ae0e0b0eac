package main

import (
	"errors"

	"github.com/spf13/cobra"
)

const logMsgSchemaReady = "event store schema ready"

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the events table and its indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			a := &app{cfg: cfg, logger: newLogger(cfg.LogLevel)}
			if err = openEventStore(cmd.Context(), a); err != nil {
				return errors.Join(err, a.close())
			}

			if err = a.eventStore.EnsureSchema(cmd.Context()); err != nil {
				return errors.Join(err, a.close())
			}

			a.logger.Info(logMsgSchemaReady, "table", cfg.Postgres.TableName)

			return a.close()
		},
	}
}
