package main

import (
	"github.com/spf13/cobra"

	"github.com/locvowork/employee_management_sample/ems/internal/logger"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if migrateOnStart {
			if err := app.Provider.Migrate(ctx); err != nil {
				return err
			}
		}

		app.Mount()
		if err := app.Run(ctx); err != nil {
			logger.ErrorLog(ctx, "Server stopped: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}
