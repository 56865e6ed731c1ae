// Package testutil opens throwaway sqlite stores for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_management_sample/ems/internal/database"
	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/repository"
	"github.com/locvowork/employee_management_sample/ems/internal/seeder"
)

// Auth is the policy used by NewRepository.
var Auth = domain.AuthPolicy{AdminUser: "admin", AdminPassword: "admin123", EmployeeLogin: true}

// NewProvider opens a migrated sqlite file in a temp dir. The file is used
// instead of :memory: because every pooled connection must see the same data.
func NewProvider(t *testing.T) *database.Provider {
	t.Helper()
	ctx := context.Background()

	p, err := database.Open(ctx, database.Config{
		Driver: "sqlite",
		DBName: filepath.Join(t.TempDir(), "ems_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	require.NoError(t, p.Migrate(ctx))
	return p
}

// NewRepository returns a façade over a migrated store holding the seeder's
// reference data and no employees.
func NewRepository(t *testing.T) (domain.EmployeeRepository, *database.Provider) {
	t.Helper()
	p := NewProvider(t)
	repo := repository.NewEmployeeRepository(p, Auth)
	require.NoError(t, seeder.NewDataSeeder(p, repo).SeedReferenceData(context.Background()))
	return repo, p
}

// Employee returns a valid NewEmployee referencing seeded reference rows.
func Employee(first, last string, salary int64) domain.NewEmployee {
	return domain.NewEmployee{
		FirstName:  first,
		LastName:   last,
		Email:      first + "." + last + "@example.com",
		Phone:      "555-0100",
		Gender:     "Female",
		Race:       "Asian",
		SSN:        "123-45-6789",
		DOB:        "1990-05-17",
		HireDate:   "2020-01-06",
		Salary:     decimal.NewFromInt(salary),
		JobTitleID: 1,
		DivisionID: 1,
		Address:    domain.Address{Street: "12 Main St", CityID: 1, StateID: 1, Zip: "30303"},
	}
}

// InsertPayroll writes one payroll row with a single deduction column set.
func InsertPayroll(t *testing.T, p *database.Provider, empID int, payDate, earnings, fedTax string) {
	t.Helper()
	query, args := p.Dialect().Builder().
		Insert("payroll", "empid", "pay_date", "earnings", "fed_tax", "hours_worked").
		Values(empID, payDate, earnings, fedTax, "160").
		Build()
	_, err := p.DB().ExecContext(context.Background(), query, args...)
	require.NoError(t, err)
}

// Count returns the number of rows of table matching empid.
func Count(t *testing.T, p *database.Provider, table string, empID int) int {
	t.Helper()
	query, args := p.Dialect().Builder().Select("COUNT(*)").From(table).Where("empid = ?", empID).Build()
	var n int
	require.NoError(t, p.DB().QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}
