package repository_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/repository"
	"github.com/locvowork/employee_management_sample/ems/internal/testutil"
)

func mustInsert(t *testing.T, repo domain.EmployeeRepository, e domain.NewEmployee) int {
	t.Helper()
	id, err := repo.InsertEmployee(context.Background(), e)
	require.NoError(t, err)
	require.Greater(t, id, 0)
	return id
}

func mustGet(t *testing.T, repo domain.EmployeeRepository, id int) *domain.Employee {
	t.Helper()
	e, err := repo.GetEmployee(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e
}

func TestAuthenticate(t *testing.T) {
	repo, p := testutil.NewRepository(t)
	ctx := context.Background()
	id := mustInsert(t, repo, testutil.Employee("Ada", "Lovelace", 52000))

	tests := []struct {
		name     string
		username string
		password string
		want     *domain.Session
	}{
		{"admin", "admin", "admin123", &domain.Session{Role: domain.RoleAdmin, ID: 0}},
		{"admin wrong password", "admin", "nope", nil},
		{"admin username with employee id", "admin", strconv.Itoa(id), nil},
		{"employee", "Ada_Lovelace", strconv.Itoa(id), &domain.Session{Role: domain.RoleEmployee, ID: id}},
		{"employee next id", "Ada_Lovelace", strconv.Itoa(id + 1), nil},
		{"employee wrong case", "ada_lovelace", strconv.Itoa(id), nil},
		{"employee non numeric password", "Ada_Lovelace", "secret", nil},
		{"employee space instead of underscore", "Ada Lovelace", strconv.Itoa(id), nil},
		{"unknown user", "Nobody_Here", "1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Authenticate(ctx, tt.username, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("employee login disabled", func(t *testing.T) {
		adminOnly := repository.NewEmployeeRepository(p, domain.AuthPolicy{AdminUser: "admin", AdminPassword: "admin123"})
		got, err := adminOnly.Authenticate(ctx, "Ada_Lovelace", strconv.Itoa(id))
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestInsertGetRoundTrip(t *testing.T) {
	repo, _ := testutil.NewRepository(t)

	in := testutil.Employee("Grace", "Hopper", 0)
	in.Salary = decimal.RequireFromString("61000.55")
	in.JobTitleID = 2
	in.DivisionID = 2
	in.Address = domain.Address{Street: "7 Navy Way", CityID: 2, StateID: 2, Zip: "02110"}

	id := mustInsert(t, repo, in)
	got := mustGet(t, repo, id)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, in.FirstName, got.FirstName)
	assert.Equal(t, in.LastName, got.LastName)
	assert.Equal(t, in.Email, got.Email)
	assert.Equal(t, in.Phone, got.Phone)
	assert.Equal(t, in.Gender, got.Gender)
	assert.Equal(t, in.Race, got.Race)
	assert.Equal(t, in.SSN, got.SSN)
	assert.Equal(t, in.DOB, got.DOB)
	assert.Equal(t, in.HireDate, got.HireDate)
	assert.True(t, in.Salary.Equal(got.Salary), "salary %s", got.Salary)
	assert.Equal(t, "Accountant", got.JobTitle)
	assert.Equal(t, "Finance", got.DivisionName)
	assert.Equal(t, in.Address, got.Address)
}

func TestInsertEmployeeOptionalFieldsAndCallerID(t *testing.T) {
	repo, _ := testutil.NewRepository(t)

	in := testutil.Employee("Alan", "Turing", 70000)
	in.ID = 500
	in.Email, in.Phone, in.Race, in.DOB, in.HireDate = "", "", "", "", ""

	id := mustInsert(t, repo, in)
	assert.Equal(t, 500, id)

	got := mustGet(t, repo, 500)
	assert.Empty(t, got.Email)
	assert.Empty(t, got.DOB)
	assert.Empty(t, got.HireDate)

	next := mustInsert(t, repo, testutil.Employee("Joan", "Clarke", 50000))
	assert.Greater(t, next, 500)

	_, err := repo.InsertEmployee(context.Background(), in)
	assert.True(t, domain.IsDataAccess(err), "duplicate id should fail in the store, got %v", err)
}

func TestInsertEmployeeValidation(t *testing.T) {
	repo, p := testutil.NewRepository(t)
	ctx := context.Background()

	missingTitle := testutil.Employee("Ada", "Lovelace", 1)
	missingTitle.JobTitleID = 99
	_, err := repo.InsertEmployee(ctx, missingTitle)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "job_title_id", ve.Field)

	missingState := testutil.Employee("Ada", "Lovelace", 1)
	missingState.Address.StateID = 42
	_, err = repo.InsertEmployee(ctx, missingState)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "state_id", ve.Field)

	negative := testutil.Employee("Ada", "Lovelace", -1)
	_, err = repo.InsertEmployee(ctx, negative)
	assert.True(t, domain.IsValidation(err))

	var n int
	require.NoError(t, p.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&n))
	assert.Zero(t, n)
}

func TestInsertEmployeeRollsBackAllWrites(t *testing.T) {
	repo, p := testutil.NewRepository(t)
	ctx := context.Background()

	_, err := p.DB().ExecContext(ctx, `
		CREATE TRIGGER block_division BEFORE INSERT ON employee_division
		BEGIN
			SELECT RAISE(ABORT, 'division writes disabled');
		END`)
	require.NoError(t, err)

	_, err = repo.InsertEmployee(ctx, testutil.Employee("Ada", "Lovelace", 52000))
	var dae *domain.DataAccessError
	require.True(t, errors.As(err, &dae), "got %v", err)
	assert.Equal(t, "InsertEmployee", dae.Op)

	for _, table := range []string{"employees", "employee_job_titles", "employee_division", "address"} {
		var n int
		require.NoError(t, p.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestGetEmployee(t *testing.T) {
	repo, p := testutil.NewRepository(t)
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		got, err := repo.GetEmployee(ctx, 12345)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("sentinel for missing associations", func(t *testing.T) {
		id := mustInsert(t, repo, testutil.Employee("Ada", "Lovelace", 52000))
		_, err := p.DB().ExecContext(ctx, "DELETE FROM employee_job_titles WHERE empid = ?", id)
		require.NoError(t, err)
		_, err = p.DB().ExecContext(ctx, "DELETE FROM employee_division WHERE empid = ?", id)
		require.NoError(t, err)
		_, err = p.DB().ExecContext(ctx, "DELETE FROM address WHERE empid = ?", id)
		require.NoError(t, err)

		got := mustGet(t, repo, id)
		assert.Equal(t, domain.NotAvailable, got.JobTitle)
		assert.Equal(t, domain.NotAvailable, got.DivisionName)
		assert.True(t, got.Address.IsZero())
	})
}

func TestSearchByNameFoldsNonASCII(t *testing.T) {
	repo, _ := testutil.NewRepository(t)
	ctx := context.Background()

	elodie := mustInsert(t, repo, testutil.Employee("Élodie", "Öztürk", 58000))
	mustInsert(t, repo, testutil.Employee("Eloise", "Oz", 41000))

	for _, fragment := range []string{"Élodie", "élodie", "ÉLODIE", "Öztürk", "öZTÜRK", "die öz", "lodie"} {
		t.Run(fragment, func(t *testing.T) {
			got, err := repo.SearchByName(ctx, fragment)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, elodie, got[0].ID)
		})
	}

	got, err := repo.SearchByName(ctx, "elodie")
	require.NoError(t, err)
	assert.Empty(t, got, "accents are not stripped")
}

func TestSearch(t *testing.T) {
	repo, _ := testutil.NewRepository(t)
	ctx := context.Background()

	ada := testutil.Employee("Ada", "Lovelace", 52000)
	ada.SSN, ada.DOB = "111-11-1111", "1990-05-17"
	grace := testutil.Employee("Grace", "Hopper", 61000)
	grace.SSN, grace.DOB = "222-22-2222", "1985-12-09"
	al := testutil.Employee("Al", "Under_Score", 40000)
	al.SSN, al.DOB = "333-33-3333", "1985-12-09"

	adaID := mustInsert(t, repo, ada)
	graceID := mustInsert(t, repo, grace)
	alID := mustInsert(t, repo, al)

	ids := func(es []domain.Employee) []int {
		out := make([]int, 0, len(es))
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}

	t.Run("name is case insensitive substring", func(t *testing.T) {
		got, err := repo.SearchByName(ctx, "LOVE")
		require.NoError(t, err)
		assert.Equal(t, []int{adaID}, ids(got))

		got, err = repo.SearchByName(ctx, "ce ho")
		require.NoError(t, err)
		assert.Equal(t, []int{graceID}, ids(got))

		got, err = repo.SearchByName(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []int{adaID, graceID, alID}, ids(got))
	})

	t.Run("name wildcards are literal", func(t *testing.T) {
		got, err := repo.SearchByName(ctx, "r_s")
		require.NoError(t, err)
		assert.Equal(t, []int{alID}, ids(got))

		got, err = repo.SearchByName(ctx, "e%h")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("dob", func(t *testing.T) {
		got, err := repo.SearchByDOB(ctx, "1985-12-09")
		require.NoError(t, err)
		assert.Equal(t, []int{graceID, alID}, ids(got))

		got, err = repo.SearchByDOB(ctx, "2001-01-01")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		_, err = repo.SearchByDOB(ctx, "yesterday")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("ssn", func(t *testing.T) {
		got, err := repo.SearchBySSN(ctx, "222-22-2222")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Grace", got[0].FirstName)
		assert.Equal(t, "Software Engineer", got[0].JobTitle)

		got, err = repo.SearchBySSN(ctx, "999-99-9999")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestUpdateField(t *testing.T) {
	repo, _ := testutil.NewRepository(t)
	ctx := context.Background()
	id := mustInsert(t, repo, testutil.Employee("Ada", "Lovelace", 52000))

	ok, err := repo.UpdateField(ctx, id, "firstName", "Augusta")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateField(ctx, id, "Salary", "70000.10")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateField(ctx, id, "hire_date", "2021-03-04")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateField(ctx, id, "phone", "555-0199")
	require.NoError(t, err)
	assert.True(t, ok)

	got := mustGet(t, repo, id)
	assert.Equal(t, "Augusta", got.FirstName)
	assert.True(t, decimal.RequireFromString("70000.10").Equal(got.Salary))
	assert.Equal(t, "2021-03-04", got.HireDate)
	assert.Equal(t, "555-0199", got.Phone)

	t.Run("negative salary is rejected", func(t *testing.T) {
		ok, err := repo.UpdateField(ctx, id, "salary", "-5")
		assert.False(t, ok)
		assert.True(t, domain.IsValidation(err))
		assert.True(t, decimal.RequireFromString("70000.10").Equal(mustGet(t, repo, id).Salary))
	})

	t.Run("unparsable values are rejected", func(t *testing.T) {
		_, err := repo.UpdateField(ctx, id, "salary", "a lot")
		assert.True(t, domain.IsValidation(err))
		_, err = repo.UpdateField(ctx, id, "dob", "17/05/1990")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("blank names are rejected", func(t *testing.T) {
		for _, field := range []string{"first_name", "lastName"} {
			ok, err := repo.UpdateField(ctx, id, field, "  ")
			assert.False(t, ok)
			assert.True(t, domain.IsValidation(err), field)
		}
		got := mustGet(t, repo, id)
		assert.Equal(t, "Augusta", got.FirstName)
		assert.Equal(t, "Lovelace", got.LastName)
	})

	t.Run("unknown field", func(t *testing.T) {
		ok, err := repo.UpdateField(ctx, id, "nonWhitelistedColumn", "x")
		assert.False(t, ok)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("missing employee", func(t *testing.T) {
		ok, err := repo.UpdateField(ctx, id+100, "email", "x@example.com")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestValidationHappensBeforeSQL(t *testing.T) {
	repo, p := testutil.NewRepository(t)
	ctx := context.Background()
	require.NoError(t, p.Close())

	_, err := repo.UpdateField(ctx, 1, "nonWhitelistedColumn", "x")
	assert.True(t, domain.IsValidation(err), "got %v", err)

	_, err = repo.UpdateSalariesInRange(ctx, decimal.NewFromInt(10), decimal.NewFromInt(1), decimal.Zero)
	assert.True(t, domain.IsValidation(err), "got %v", err)

	_, err = repo.GetTotalPayByDivision(ctx, 2025, 13)
	assert.True(t, domain.IsValidation(err), "got %v", err)

	_, err = repo.UpdateField(ctx, 1, "email", "x@example.com")
	var dae *domain.DataAccessError
	require.True(t, errors.As(err, &dae), "got %v", err)
	assert.Equal(t, "UpdateField", dae.Op)
}

func TestUpdateAddress(t *testing.T) {
	repo, p := testutil.NewRepository(t)
	ctx := context.Background()
	id := mustInsert(t, repo, testutil.Employee("Ada", "Lovelace", 52000))

	addr := domain.Address{Street: "9 Elm St", CityID: 2, StateID: 2, Zip: "02110"}
	ok, err := repo.UpdateAddress(ctx, id, addr)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, addr, mustGet(t, repo, id).Address)

	t.Run("inserts when the employee has no address", func(t *testing.T) {
		_, err := p.DB().ExecContext(ctx, "DELETE FROM address WHERE empid = ?", id)
		require.NoError(t, err)

		addr := domain.Address{Street: "1 New Rd", CityID: 3, StateID: 3, Zip: "60606"}
		ok, err := repo.UpdateAddress(ctx, id, addr)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, addr, mustGet(t, repo, id).Address)
	})

	t.Run("missing employee", func(t *testing.T) {
		ok, err := repo.UpdateAddress(ctx, id+1, addr)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, testutil.Count(t, p, "address", id+1))
	})

	t.Run("missing city", func(t *testing.T) {
		ok, err := repo.UpdateAddress(ctx, id, domain.Address{Street: "x", CityID: 99, StateID: 1})
		assert.False(t, ok)
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "city_id", ve.Field)
	})
}

func TestAssignJobTitleAndDivision(t *testing.T) {
	repo, p := testutil.NewRepository(t)
	ctx := context.Background()
	id := mustInsert(t, repo, testutil.Employee("Ada", "Lovelace", 52000))

	ok, err := repo.AssignJobTitle(ctx, id, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = p.DB().ExecContext(ctx, "DELETE FROM employee_division WHERE empid = ?", id)
	require.NoError(t, err)
	ok, err = repo.AssignDivision(ctx, id, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	got := mustGet(t, repo, id)
	assert.Equal(t, "Accountant", got.JobTitle)
	assert.Equal(t, "Finance", got.DivisionName)
	assert.Equal(t, 1, testutil.Count(t, p, "employee_division", id))

	_, err = repo.AssignJobTitle(ctx, id, 99)
	assert.True(t, domain.IsValidation(err))
	_, err = repo.AssignDivision(ctx, id, 0)
	assert.True(t, domain.IsValidation(err))

	ok, err = repo.AssignDivision(ctx, id+1, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateSalariesInRange(t *testing.T) {
	repo, _ := testutil.NewRepository(t)
	ctx := context.Background()
	d := decimal.NewFromInt

	salaries := []int64{45000, 50000, 55000, 60000, 65000}
	ids := make([]int, len(salaries))
	for i, s := range salaries {
		ids[i] = mustInsert(t, repo, testutil.Employee("Emp", strconv.Itoa(i), s))
	}
	salaryOf := func(i int) decimal.Decimal { return mustGet(t, repo, ids[i]).Salary }

	n, err := repo.UpdateSalariesInRange(ctx, d(50000), d(60000), d(10))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	want := []int64{45000, 55000, 60500, 66000, 65000}
	for i, w := range want {
		assert.True(t, d(w).Equal(salaryOf(i)), "employee %d: want %d got %s", i, w, salaryOf(i))
	}

	n, err = repo.UpdateSalariesInRange(ctx, d(0), d(1000000), decimal.Zero)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	for i, w := range want {
		assert.True(t, d(w).Equal(salaryOf(i)), "0%% should be a no-op for employee %d", i)
	}

	n, err = repo.UpdateSalariesInRange(ctx, d(66000), d(66000), d(-50))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.True(t, d(33000).Equal(salaryOf(3)))

	for _, tc := range []struct{ min, max, pct decimal.Decimal }{
		{d(-1), d(10), d(5)},
		{d(10), d(5), d(5)},
		{d(0), d(10), d(-150)},
	} {
		_, err := repo.UpdateSalariesInRange(ctx, tc.min, tc.max, tc.pct)
		assert.True(t, domain.IsValidation(err))
	}
}

func TestDeleteEmployee(t *testing.T) {
	repo, p := testutil.NewRepository(t)
	ctx := context.Background()
	id := mustInsert(t, repo, testutil.Employee("Ada", "Lovelace", 52000))
	other := mustInsert(t, repo, testutil.Employee("Grace", "Hopper", 61000))
	testutil.InsertPayroll(t, p, id, "2025-01-28", "4333.33", "520.00")
	testutil.InsertPayroll(t, p, id, "2025-02-28", "4333.33", "520.00")
	testutil.InsertPayroll(t, p, other, "2025-01-28", "5083.33", "610.00")

	ok, err := repo.DeleteEmployee(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetEmployee(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
	for _, table := range []string{"address", "payroll", "employee_job_titles", "employee_division", "employees"} {
		assert.Zero(t, testutil.Count(t, p, table, id), table)
	}
	assert.Equal(t, 1, testutil.Count(t, p, "payroll", other))

	ok, err = repo.DeleteEmployee(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteEmployeeRollsBack(t *testing.T) {
	repo, p := testutil.NewRepository(t)
	ctx := context.Background()
	id := mustInsert(t, repo, testutil.Employee("Ada", "Lovelace", 52000))
	testutil.InsertPayroll(t, p, id, "2025-01-28", "4333.33", "520.00")

	_, err := p.DB().ExecContext(ctx, `
		CREATE TRIGGER block_employee_delete BEFORE DELETE ON employees
		BEGIN
			SELECT RAISE(ABORT, 'employee deletes disabled');
		END`)
	require.NoError(t, err)

	ok, err := repo.DeleteEmployee(ctx, id)
	assert.False(t, ok)
	assert.True(t, domain.IsDataAccess(err), "got %v", err)

	for _, table := range []string{"address", "payroll", "employee_job_titles", "employee_division", "employees"} {
		assert.Equal(t, 1, testutil.Count(t, p, table, id), table)
	}
}
