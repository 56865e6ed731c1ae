package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_management_sample/ems/internal/seeder"
)

var (
	seedPreset    string
	seedEmployees int
	seedMonths    int
	seedClear     bool
	seedWorkers   int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with reference data and generated employees",
	Long: `Seed writes the reference tables, then generates employees and monthly
pay statements. --employees and --months override the preset.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ds := app.Seeder().WithConcurrency(seedWorkers)

		if seedClear {
			if err := ds.ClearData(ctx); err != nil {
				return err
			}
		}

		employees, months := seeder.GetPresetConfig(seeder.SeedPreset(seedPreset))
		if seedEmployees > 0 {
			employees = seedEmployees
		}
		if seedMonths > 0 {
			months = seedMonths
		}

		stats, err := ds.SeedData(ctx, employees, months)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d employees and %d pay statements in %v\n",
			stats.Employees, stats.Payroll, stats.Elapsed)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPreset, "preset", string(seeder.PresetSmall), "data preset: small, medium, large, xlarge")
	seedCmd.Flags().IntVar(&seedEmployees, "employees", 0, "number of employees (overrides preset)")
	seedCmd.Flags().IntVar(&seedMonths, "months", 0, "months of payroll per employee (overrides preset)")
	seedCmd.Flags().IntVar(&seedWorkers, "workers", 4, "concurrent employee inserts (postgres only)")
	seedCmd.Flags().BoolVar(&seedClear, "clear", false, "delete existing employees first")
}
