package main

import (
	"github.com/davranaff/coffee/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	var to int32

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.loggerService.Shutdown()

			return database.Migrate(cmd.Context(), &a.log, a.cfg, to)
		},
	}

	cmd.Flags().Int32Var(&to, "to", -1, "target version; -1 migrates to the latest")
	return cmd
}
