// Package main provides the ems command: the HTTP API plus store
// administration (migrate, seed, export).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_management_sample/ems/internal/bootstrap"
)

var (
	// envFiles is set by the --env flag.
	envFiles []string

	// app is connected by PersistentPreRunE and closed after every command.
	app *bootstrap.App
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ems",
	Short: "Employee data access service",
	Long: `ems serves the employee management API over HTTP and administers its
store. Configuration comes from the environment and optional dotenv files.`,
	SilenceUsage:      true,
	PersistentPreRunE: connect,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app != nil {
			return app.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", []string{".env"}, "dotenv files loaded before the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
}

func connect(cmd *cobra.Command, args []string) error {
	app = bootstrap.NewApp()
	if err := app.Connect(cmd.Context(), envFiles...); err != nil {
		app = nil
		return err
	}
	return nil
}
