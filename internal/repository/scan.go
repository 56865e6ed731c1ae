package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// dateValue scans DATE columns into YYYY-MM-DD whatever the driver returns:
// lib/pq yields time.Time, sqlite may yield time.Time or text.
type dateValue struct {
	s string
}

func (d *dateValue) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		d.s = ""
	case time.Time:
		d.s = v.Format(domain.DateLayout)
	case string:
		d.s = normalizeDate(v)
	case []byte:
		d.s = normalizeDate(string(v))
	default:
		return fmt.Errorf("unsupported date value of type %T", src)
	}
	return nil
}

func normalizeDate(s string) string {
	if len(s) >= len(domain.DateLayout) {
		if _, err := time.Parse(domain.DateLayout, s[:len(domain.DateLayout)]); err == nil {
			return s[:len(domain.DateLayout)]
		}
	}
	return s
}

// employeeColumns must stay in the order scanEmployee reads them.
var employeeColumns = []string{
	"e.empid", "e.first_name", "e.last_name", "e.email", "e.phone_number",
	"e.gender", "e.race", "e.ssn", "e.dob", "e.hire_date", "e.salary",
	"jt.job_title", "d.name",
	"a.street", "a.city_id", "a.state_id", "a.zip",
}

func scanEmployee(row rowScanner) (domain.Employee, error) {
	var e domain.Employee
	var first, last, email, phone, gender, race, ssn sql.NullString
	var jobTitle, division, street, zip sql.NullString
	var dob, hireDate dateValue
	var salary decimal.NullDecimal
	var cityID, stateID sql.NullInt64

	err := row.Scan(&e.ID, &first, &last, &email, &phone, &gender, &race, &ssn,
		&dob, &hireDate, &salary, &jobTitle, &division, &street, &cityID, &stateID, &zip)
	if err != nil {
		return e, err
	}

	e.FirstName = first.String
	e.LastName = last.String
	e.Email = email.String
	e.Phone = phone.String
	e.Gender = gender.String
	e.Race = race.String
	e.SSN = ssn.String
	e.DOB = dob.s
	e.HireDate = hireDate.s
	e.Salary = salary.Decimal
	e.JobTitle = orNotAvailable(jobTitle)
	e.DivisionName = orNotAvailable(division)
	e.Address = domain.Address{
		Street:  street.String,
		CityID:  int(cityID.Int64),
		StateID: int(stateID.Int64),
		Zip:     zip.String,
	}
	return e, nil
}

func scanEmployees(rows *sql.Rows) ([]domain.Employee, error) {
	employees := make([]domain.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func orNotAvailable(s sql.NullString) string {
	if !s.Valid || s.String == "" {
		return domain.NotAvailable
	}
	return s.String
}

// nullable stores empty optional strings as NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// money scans numeric aggregates, which come back as NULL over empty sets.
func money(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal.Round(2)
}
