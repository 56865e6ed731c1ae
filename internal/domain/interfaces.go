package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// EmployeeRepository defines the employee data access façade.
//
// Keyed reads return nil (or an empty slice) when nothing matches; only a
// store failure produces an error, always a *DataAccessError. Caller mistakes
// are reported as *ValidationError before any SQL runs.
type EmployeeRepository interface {
	Authenticate(ctx context.Context, username, password string) (*Session, error)

	GetEmployee(ctx context.Context, id int) (*Employee, error)
	SearchByName(ctx context.Context, fragment string) ([]Employee, error)
	SearchByDOB(ctx context.Context, dob string) ([]Employee, error)
	SearchBySSN(ctx context.Context, ssn string) ([]Employee, error)

	UpdateField(ctx context.Context, id int, field, value string) (bool, error)
	UpdateAddress(ctx context.Context, id int, addr Address) (bool, error)
	AssignJobTitle(ctx context.Context, id, jobTitleID int) (bool, error)
	AssignDivision(ctx context.Context, id, divisionID int) (bool, error)
	UpdateSalariesInRange(ctx context.Context, min, max, percent decimal.Decimal) (int64, error)
	InsertEmployee(ctx context.Context, e NewEmployee) (int, error)
	DeleteEmployee(ctx context.Context, id int) (bool, error)

	// Payroll reports
	GetPayStatementHistory(ctx context.Context, id int) ([]PayStatement, error)
	GetTotalPayByJobTitle(ctx context.Context, year, month int) ([]PayTotal, error)
	GetTotalPayByDivision(ctx context.Context, year, month int) ([]PayTotal, error)

	// Reference data
	GetJobTitles(ctx context.Context) (map[int]string, error)
	GetDivisions(ctx context.Context) (map[int]string, error)
	GetCities(ctx context.Context) ([]City, error)
	GetStates(ctx context.Context) ([]State, error)
}
