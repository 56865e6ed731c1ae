package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/report"
	"github.com/locvowork/employee_management_sample/ems/internal/service"
)

var (
	exportDimension string
	exportYear      int
	exportMonth     int
	exportOut       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a monthly total pay report to an xlsx or csv file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dim, err := service.ParseDimension(exportDimension)
		if err != nil {
			return err
		}

		now := time.Now()
		year, month := exportYear, exportMonth
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = int(now.Month())
		}

		out := exportOut
		if out == "" {
			out = report.Filename("total-pay-"+string(dim), year, month) + ".xlsx"
		}
		ext := strings.ToLower(filepath.Ext(out))
		if ext != ".csv" && ext != ".xlsx" {
			return fmt.Errorf("unsupported report extension %q, use .xlsx or .csv", filepath.Ext(out))
		}

		admin := &domain.Session{Role: domain.RoleAdmin}
		totals, err := app.Service.TotalPay(ctx, admin, dim, year, month)
		if err != nil {
			return err
		}
		exp, err := app.Reports.TotalPay(dim.Label(), year, month, totals)
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		if ext == ".csv" {
			err = exp.ToCSV(f)
		} else {
			_, err = exp.WriteTo(f)
		}
		if err != nil {
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(totals), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDimension, "dimension", string(service.DimensionJobTitle), "group by job-title or division")
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "report year (default current)")
	exportCmd.Flags().IntVar(&exportMonth, "month", 0, "report month 1-12 (default current)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, format from extension (.xlsx or .csv)")
}
