package seeder

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locvowork/employee_management_sample/ems/internal/database"
	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/logger"
)

type DataSeeder struct {
	provider *database.Provider
	repo     domain.EmployeeRepository
	rng      *rand.Rand
	now      func() time.Time
	workers  int
}

func NewDataSeeder(provider *database.Provider, repo domain.EmployeeRepository) *DataSeeder {
	return &DataSeeder{
		provider: provider,
		repo:     repo,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		workers:  1,
	}
}

// WithConcurrency inserts employees on n workers. sqlite stores always use
// one, since the file takes a single writer.
func (ds *DataSeeder) WithConcurrency(n int) *DataSeeder {
	if n > 0 {
		ds.workers = n
	}
	return ds
}

// WithClock fixes the month payroll generation counts back from.
func (ds *DataSeeder) WithClock(now func() time.Time) *DataSeeder {
	ds.now = now
	return ds
}

// WithSeed makes generated employees reproducible.
func (ds *DataSeeder) WithSeed(seed int64) *DataSeeder {
	ds.rng = rand.New(rand.NewSource(seed))
	return ds
}

// Reference data, keyed by id.
var (
	Cities    = []string{"Atlanta", "Boston", "Chicago", "Denver", "Houston", "Seattle"}
	States    = []string{"Georgia", "Massachusetts", "Illinois", "Colorado", "Texas", "Washington"}
	JobTitles = []string{"Software Engineer", "Accountant", "HR Specialist", "Sales Manager", "Data Analyst", "Director"}
	Divisions = []struct {
		Name, City, Line1, State, Country, Postal string
	}{
		{"Technology Engineering", "Atlanta", "100 Peachtree St", "GA", "USA", "30303"},
		{"Finance", "Boston", "1 Federal St", "MA", "USA", "02110"},
		{"Human Resources", "Chicago", "233 S Wacker Dr", "IL", "USA", "60606"},
		{"Sales", "Denver", "1700 Lincoln St", "CO", "USA", "80203"},
	}

	firstNames = []string{"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda", "David", "Susan", "Wei", "Aisha", "Carlos", "Mei"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Nguyen", "Patel", "Kim", "Lopez"}
	genders    = []string{"Female", "Male", "Non-binary"}
	races      = []string{"Asian", "Black", "Hispanic", "White", "Other"}
	streets    = []string{"Main St", "Oak Ave", "Maple Dr", "Cedar Ln", "Elm St", "Pine Rd"}
)

// Stats reports what SeedData created.
type Stats struct {
	Employees int
	Payroll   int
	Elapsed   time.Duration
}

// SeedReferenceData fills city, state, job_titles and division with fixed
// ids. Tables that already hold rows are left alone.
func (ds *DataSeeder) SeedReferenceData(ctx context.Context) error {
	err := ds.provider.Transaction(ctx, func(tx *sql.Tx) error {
		if err := ds.seedNames(ctx, tx, "city", "city_id", "name_of_city", Cities); err != nil {
			return err
		}
		if err := ds.seedNames(ctx, tx, "state", "state_id", "name_of_state", States); err != nil {
			return err
		}
		if err := ds.seedNames(ctx, tx, "job_titles", "job_title_id", "job_title", JobTitles); err != nil {
			return err
		}

		empty, err := isEmpty(ctx, tx, "division")
		if err != nil || !empty {
			return err
		}
		for i, d := range Divisions {
			query, args := ds.provider.Dialect().Builder().
				Insert("division", "id", "name", "city", "address_line1", "address_line2", "state", "country", "postal_code").
				Values(i+1, d.Name, d.City, d.Line1, nil, d.State, d.Country, d.Postal).
				Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to insert division %q: %w", d.Name, err)
			}
		}
		return ds.provider.Dialect().SyncSequence(ctx, tx, "division", "id")
	})
	if err != nil {
		return fmt.Errorf("failed to seed reference data: %w", err)
	}
	return nil
}

func (ds *DataSeeder) seedNames(ctx context.Context, tx *sql.Tx, table, idCol, nameCol string, names []string) error {
	empty, err := isEmpty(ctx, tx, table)
	if err != nil || !empty {
		return err
	}
	for i, name := range names {
		query, args := ds.provider.Dialect().Builder().Insert(table, idCol, nameCol).Values(i+1, name).Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert %s %q: %w", table, name, err)
		}
	}
	return ds.provider.Dialect().SyncSequence(ctx, tx, table, idCol)
}

func isEmpty(ctx context.Context, tx *sql.Tx, table string) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// SeedData creates numEmployees employees through the repository and
// numMonths monthly pay statements for each of them.
func (ds *DataSeeder) SeedData(ctx context.Context, numEmployees, numMonths int) (Stats, error) {
	start := time.Now()
	var stats Stats

	if err := ds.SeedReferenceData(ctx); err != nil {
		return stats, err
	}
	logger.InfoLog(ctx, "Seeding %d employees with %d months of payroll", numEmployees, numMonths)

	type seeded struct {
		id     int
		salary decimal.Decimal
	}
	// generated up front: the rng is not safe for concurrent use
	generated := make([]domain.NewEmployee, numEmployees)
	for i := range generated {
		generated[i] = ds.randomEmployee()
	}

	workers := ds.workers
	if ds.provider.Dialect() == database.SQLite {
		workers = 1
	}
	employees := make([]seeded, numEmployees)
	err := forEach(ctx, numEmployees, func(ctx context.Context, i int) error {
		e := generated[i]
		id, err := ds.repo.InsertEmployee(ctx, e)
		if err != nil {
			return fmt.Errorf("failed to insert employee %s %s: %w", e.FirstName, e.LastName, err)
		}
		employees[i] = seeded{id: id, salary: e.Salary}
		return nil
	}, withWorkers(workers), withRetry(2, func(attempt int) time.Duration {
		return time.Duration(attempt) * 100 * time.Millisecond
	}, domain.IsDataAccess))
	if err != nil {
		return stats, err
	}
	stats.Employees = len(employees)

	err = ds.provider.Transaction(ctx, func(tx *sql.Tx) error {
		// placeholders only, values are bound per row
		query, _ := ds.provider.Dialect().Builder().
			Insert("payroll", "empid", "pay_date", "earnings", "fed_tax", "fed_med", "fed_ss",
				"state_tax", "retire_401k", "health_care", "hours_worked").
			Values(nil, nil, nil, nil, nil, nil, nil, nil, nil, nil).
			Build()
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range employees {
			for m := numMonths - 1; m >= 0; m-- {
				stub := PayStub(e.salary, ds.payDate(m))
				if _, err := stmt.ExecContext(ctx, e.id, stub.PayDate, stub.Earnings.String(), stub.FedTax.String(),
					stub.FedMed.String(), stub.FedSS.String(), stub.StateTax.String(), stub.Retire401k.String(),
					stub.HealthCare.String(), stub.HoursWorked.String()); err != nil {
					return err
				}
				stats.Payroll++
			}
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to insert payroll: %w", err)
	}

	stats.Elapsed = time.Since(start)
	logger.InfoLog(ctx, "Seeded %d employees and %d pay statements in %v", stats.Employees, stats.Payroll, stats.Elapsed)
	return stats, nil
}

// payDate is the 28th of the month monthsAgo months before the clock's month.
func (ds *DataSeeder) payDate(monthsAgo int) string {
	now := ds.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -monthsAgo, 27).Format(domain.DateLayout)
}

func (ds *DataSeeder) randomEmployee() domain.NewEmployee {
	first := firstNames[ds.rng.Intn(len(firstNames))]
	last := lastNames[ds.rng.Intn(len(lastNames))]
	dob := time.Date(1960+ds.rng.Intn(40), time.Month(1+ds.rng.Intn(12)), 1+ds.rng.Intn(28), 0, 0, 0, 0, time.UTC)
	hired := time.Date(2005+ds.rng.Intn(20), time.Month(1+ds.rng.Intn(12)), 1+ds.rng.Intn(28), 0, 0, 0, 0, time.UTC)

	return domain.NewEmployee{
		FirstName:  first,
		LastName:   last,
		Email:      fmt.Sprintf("%s.%s%d@example.com", first, last, ds.rng.Intn(1000)),
		Phone:      fmt.Sprintf("555-%03d-%04d", ds.rng.Intn(1000), ds.rng.Intn(10000)),
		Gender:     genders[ds.rng.Intn(len(genders))],
		Race:       races[ds.rng.Intn(len(races))],
		SSN:        fmt.Sprintf("%03d-%02d-%04d", 100+ds.rng.Intn(800), 10+ds.rng.Intn(90), 1000+ds.rng.Intn(9000)),
		DOB:        dob.Format(domain.DateLayout),
		HireDate:   hired.Format(domain.DateLayout),
		Salary:     decimal.NewFromInt(int64(40000 + ds.rng.Intn(80)*1000)),
		JobTitleID: 1 + ds.rng.Intn(len(JobTitles)),
		DivisionID: 1 + ds.rng.Intn(len(Divisions)),
		Address: domain.Address{
			Street:  fmt.Sprintf("%d %s", 1+ds.rng.Intn(9999), streets[ds.rng.Intn(len(streets))]),
			CityID:  1 + ds.rng.Intn(len(Cities)),
			StateID: 1 + ds.rng.Intn(len(States)),
			Zip:     fmt.Sprintf("%05d", ds.rng.Intn(100000)),
		},
	}
}

// ClearData removes employees and everything that references them. Reference
// tables are kept.
func (ds *DataSeeder) ClearData(ctx context.Context) error {
	logger.InfoLog(ctx, "Clearing employee data")

	return ds.provider.Transaction(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"payroll", "address", "employee_job_titles", "employee_division", "employees"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to delete %s: %w", table, err)
			}
		}
		return nil
	})
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
	PresetXLarge SeedPreset = "xlarge"
)

// GetPresetConfig returns configuration for a preset
func GetPresetConfig(preset SeedPreset) (numEmployees, numMonths int) {
	switch preset {
	case PresetSmall:
		return 10, 3
	case PresetMedium:
		return 50, 12
	case PresetLarge:
		return 200, 12
	case PresetXLarge:
		return 1000, 24
	default:
		return 50, 12
	}
}
