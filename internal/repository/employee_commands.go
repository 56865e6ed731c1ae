package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// UpdateField sets one allow-listed field. The field name never reaches the
// SQL text; only the column it resolves to does.
func (r *employeeRepository) UpdateField(ctx context.Context, id int, field, value string) (bool, error) {
	f, err := domain.LookupField(field)
	if err != nil {
		return false, err
	}
	arg, err := f.Parse(value)
	if err != nil {
		return false, err
	}
	if f.Kind == domain.KindText {
		arg = nullable(value)
	}

	query, args := r.qb().Update("employees").Set(f.Column, arg).Where("empid = ?", id).Build()

	var updated bool
	err = r.withConn(ctx, "UpdateField", func(q querier) error {
		res, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		updated = n == 1
		return nil
	})
	return updated, err
}

// UpdateAddress replaces the address of an existing employee, creating the
// row when the employee has none.
func (r *employeeRepository) UpdateAddress(ctx context.Context, id int, addr domain.Address) (bool, error) {
	if err := addr.Validate(); err != nil {
		return false, err
	}

	err := r.withTx(ctx, "UpdateAddress", func(tx *sql.Tx) error {
		if err := r.requireEmployee(ctx, tx, id); err != nil {
			return err
		}
		if err := r.requireAddressRefs(ctx, tx, addr); err != nil {
			return err
		}
		return r.upsertAddress(ctx, tx, id, addr)
	})
	return r.applied(err)
}

// AssignJobTitle points the employee at a job title, replacing any previous one.
func (r *employeeRepository) AssignJobTitle(ctx context.Context, id, jobTitleID int) (bool, error) {
	if jobTitleID <= 0 {
		return false, domain.NewValidationError("job_title_id", "is required")
	}

	err := r.withTx(ctx, "AssignJobTitle", func(tx *sql.Tx) error {
		if err := r.requireEmployee(ctx, tx, id); err != nil {
			return err
		}
		if err := r.requireReference(ctx, tx, "job_titles", "job_title_id", jobTitleID, "job_title_id"); err != nil {
			return err
		}
		return r.upsertAssociation(ctx, tx, "employee_job_titles", "job_title_id", id, jobTitleID)
	})
	return r.applied(err)
}

// AssignDivision points the employee at a division, replacing any previous one.
func (r *employeeRepository) AssignDivision(ctx context.Context, id, divisionID int) (bool, error) {
	if divisionID <= 0 {
		return false, domain.NewValidationError("division_id", "is required")
	}

	err := r.withTx(ctx, "AssignDivision", func(tx *sql.Tx) error {
		if err := r.requireEmployee(ctx, tx, id); err != nil {
			return err
		}
		if err := r.requireReference(ctx, tx, "division", "id", divisionID, "division_id"); err != nil {
			return err
		}
		return r.upsertAssociation(ctx, tx, "employee_division", "div_id", id, divisionID)
	})
	return r.applied(err)
}

// UpdateSalariesInRange scales every salary in [min, max] by (1 + percent/100)
// and returns the number of rows changed.
func (r *employeeRepository) UpdateSalariesInRange(ctx context.Context, min, max, percent decimal.Decimal) (int64, error) {
	switch {
	case min.IsNegative():
		return 0, domain.NewValidationError("min", "must not be negative")
	case min.GreaterThan(max):
		return 0, domain.NewValidationError("max", "must not be less than min")
	case percent.LessThan(hundred.Neg()):
		return 0, domain.NewValidationError("percent", "must not be below -100")
	}

	factor := decimal.NewFromInt(1).Add(percent.Div(hundred))
	query, args := r.qb().
		Update("employees").
		SetExpr("salary", "ROUND(salary * CAST(? AS NUMERIC), 2)", factor.String()).
		Where("salary >= ?", min.String()).
		Where("salary <= ?", max.String()).
		Build()

	var affected int64
	err := r.withConn(ctx, "UpdateSalariesInRange", func(q querier) error {
		res, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// InsertEmployee writes the employee row and its job title, division and
// address rows in one transaction, returning the employee id.
func (r *employeeRepository) InsertEmployee(ctx context.Context, e domain.NewEmployee) (int, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	cols := []string{"first_name", "last_name", "email", "phone_number", "gender", "race", "ssn", "dob", "hire_date", "salary"}
	vals := []interface{}{
		e.FirstName, e.LastName, nullable(e.Email), nullable(e.Phone), nullable(e.Gender),
		nullable(e.Race), nullable(e.SSN), nullable(e.DOB), nullable(e.HireDate), e.Salary.Round(2).String(),
	}
	if e.ID > 0 {
		cols = append([]string{"empid"}, cols...)
		vals = append([]interface{}{e.ID}, vals...)
	}

	var newID int
	err := r.withTx(ctx, "InsertEmployee", func(tx *sql.Tx) error {
		if err := r.requireReference(ctx, tx, "job_titles", "job_title_id", e.JobTitleID, "job_title_id"); err != nil {
			return err
		}
		if err := r.requireReference(ctx, tx, "division", "id", e.DivisionID, "division_id"); err != nil {
			return err
		}
		if err := r.requireAddressRefs(ctx, tx, e.Address); err != nil {
			return err
		}

		query, args := r.qb().Insert("employees", cols...).Values(vals...).Returning("empid").Build()
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&newID); err != nil {
			return err
		}
		if e.ID > 0 {
			if err := r.dialect.SyncSequence(ctx, tx, "employees", "empid"); err != nil {
				return err
			}
		}

		if err := r.insertRow(ctx, tx, "employee_job_titles", []string{"empid", "job_title_id"}, newID, e.JobTitleID); err != nil {
			return err
		}
		if err := r.insertRow(ctx, tx, "employee_division", []string{"empid", "div_id"}, newID, e.DivisionID); err != nil {
			return err
		}
		return r.insertRow(ctx, tx, "address", []string{"empid", "street", "city_id", "state_id", "zip"},
			newID, nullable(e.Address.Street), e.Address.CityID, e.Address.StateID, nullable(e.Address.Zip))
	})
	if err != nil {
		return 0, err
	}
	return newID, nil
}

// DeleteEmployee removes the employee and every row referencing it in one
// transaction. It reports whether the employee row existed.
func (r *employeeRepository) DeleteEmployee(ctx context.Context, id int) (bool, error) {
	var existed bool
	err := r.withTx(ctx, "DeleteEmployee", func(tx *sql.Tx) error {
		for _, table := range []string{"address", "payroll", "employee_job_titles", "employee_division"} {
			query, args := r.qb().Delete(table).Where("empid = ?", id).Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}

		query, args := r.qb().Delete("employees").Where("empid = ?", id).Build()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		existed = n == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

func (r *employeeRepository) requireEmployee(ctx context.Context, q querier, id int) error {
	ok, err := r.employeeExists(ctx, q, id)
	if err != nil {
		return err
	}
	if !ok {
		return errEmployeeMissing
	}
	return nil
}

func (r *employeeRepository) requireAddressRefs(ctx context.Context, q querier, addr domain.Address) error {
	if err := r.requireReference(ctx, q, "city", "city_id", addr.CityID, "city_id"); err != nil {
		return err
	}
	return r.requireReference(ctx, q, "state", "state_id", addr.StateID, "state_id")
}

func (r *employeeRepository) upsertAddress(ctx context.Context, q querier, id int, addr domain.Address) error {
	query, args := r.qb().
		Update("address").
		Set("street", nullable(addr.Street)).
		Set("city_id", addr.CityID).
		Set("state_id", addr.StateID).
		Set("zip", nullable(addr.Zip)).
		Where("empid = ?", id).
		Build()

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	return r.insertRow(ctx, q, "address", []string{"empid", "street", "city_id", "state_id", "zip"},
		id, nullable(addr.Street), addr.CityID, addr.StateID, nullable(addr.Zip))
}

// upsertAssociation sets column on the employee's row of a one-per-employee
// join table.
func (r *employeeRepository) upsertAssociation(ctx context.Context, q querier, table, column string, id, refID int) error {
	query, args := r.qb().Update(table).Set(column, refID).Where("empid = ?", id).Build()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	return r.insertRow(ctx, q, table, []string{"empid", column}, id, refID)
}

func (r *employeeRepository) insertRow(ctx context.Context, q querier, table string, cols []string, vals ...interface{}) error {
	query, args := r.qb().Insert(table, cols...).Values(vals...).Build()
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

// applied converts the outcome of an employee-keyed write into the façade's
// (bool, error) result.
func (r *employeeRepository) applied(err error) (bool, error) {
	if errors.Is(err, errEmployeeMissing) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
