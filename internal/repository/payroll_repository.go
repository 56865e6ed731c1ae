package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
)

const deductionsExpr = "(p.fed_tax + p.fed_med + p.fed_ss + p.state_tax + p.retire_401k + p.health_care)"

// GetPayStatementHistory lists payroll rows for one employee, or for everyone
// when id is 0, newest first within each employee.
func (r *employeeRepository) GetPayStatementHistory(ctx context.Context, id int) ([]domain.PayStatement, error) {
	if id < 0 {
		return nil, domain.NewValidationError("id", "must not be negative")
	}

	query, args := r.qb().
		Select("p.payid", "p.empid", "e.first_name", "e.last_name", "p.pay_date", "p.earnings",
			"p.fed_tax", "p.fed_med", "p.fed_ss", "p.state_tax", "p.retire_401k", "p.health_care",
			"p.hours_worked", "jt.job_title", "d.name").
		From("payroll p").
		Join("INNER", "employees e", "e.empid = p.empid").
		LeftJoin("employee_job_titles ejt", "ejt.empid = p.empid").
		LeftJoin("job_titles jt", "jt.job_title_id = ejt.job_title_id").
		LeftJoin("employee_division ed", "ed.empid = p.empid").
		LeftJoin("division d", "d.id = ed.div_id").
		WhereRaw("? = 0 OR p.empid = ?", id, id).
		OrderBy("p.empid").
		OrderBy("p.pay_date DESC").
		OrderBy("p.payid DESC").
		Build()

	statements := make([]domain.PayStatement, 0)
	err := r.withConn(ctx, "GetPayStatementHistory", func(q querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			ps, err := scanPayStatement(rows)
			if err != nil {
				return err
			}
			statements = append(statements, ps)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return statements, nil
}

func scanPayStatement(row rowScanner) (domain.PayStatement, error) {
	var ps domain.PayStatement
	var first, last, jobTitle, division sql.NullString
	var payDate dateValue
	var earnings, hours decimal.NullDecimal
	deductions := make([]decimal.NullDecimal, 6)

	err := row.Scan(&ps.PayID, &ps.EmployeeID, &first, &last, &payDate, &earnings,
		&deductions[0], &deductions[1], &deductions[2], &deductions[3], &deductions[4], &deductions[5],
		&hours, &jobTitle, &division)
	if err != nil {
		return ps, err
	}

	total := decimal.Zero
	for _, d := range deductions {
		total = total.Add(money(d))
	}

	ps.EmployeeName = domain.Employee{FirstName: first.String, LastName: last.String}.FullName()
	ps.PayDate = payDate.s
	ps.GrossPay = money(earnings)
	ps.Deductions = total
	ps.NetPay = ps.GrossPay.Sub(total)
	ps.HoursWorked = money(hours)
	ps.JobTitle = orNotAvailable(jobTitle)
	ps.DivisionName = orNotAvailable(division)
	return ps, nil
}

// GetTotalPayByJobTitle sums gross and net pay per job title for payroll rows
// dated in the given month. Unassigned employees are grouped under
// domain.NotAvailable.
func (r *employeeRepository) GetTotalPayByJobTitle(ctx context.Context, year, month int) ([]domain.PayTotal, error) {
	return r.totalPay(ctx, "GetTotalPayByJobTitle", year, month, "jt.job_title",
		[2]string{"employee_job_titles ejt", "ejt.empid = p.empid"},
		[2]string{"job_titles jt", "jt.job_title_id = ejt.job_title_id"})
}

// GetTotalPayByDivision is GetTotalPayByJobTitle grouped by division.
func (r *employeeRepository) GetTotalPayByDivision(ctx context.Context, year, month int) ([]domain.PayTotal, error) {
	return r.totalPay(ctx, "GetTotalPayByDivision", year, month, "d.name",
		[2]string{"employee_division ed", "ed.empid = p.empid"},
		[2]string{"division d", "d.id = ed.div_id"})
}

func (r *employeeRepository) totalPay(ctx context.Context, op string, year, month int, nameCol string, joins ...[2]string) ([]domain.PayTotal, error) {
	from, to, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}

	group := fmt.Sprintf("COALESCE(%s, '%s')", nameCol, domain.NotAvailable)
	b := r.qb().
		Select(group, "SUM(p.earnings)", "SUM(p.earnings - "+deductionsExpr+")").
		From("payroll p")
	for _, j := range joins {
		b.LeftJoin(j[0], j[1])
	}
	query, args := b.
		Where("p.pay_date >= ?", from).
		Where("p.pay_date < ?", to).
		GroupBy(group).
		OrderBy("2 DESC").
		OrderBy("1").
		Build()

	totals := make([]domain.PayTotal, 0)
	err = r.withConn(ctx, op, func(q querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t domain.PayTotal
			var gross, net decimal.NullDecimal
			if err := rows.Scan(&t.Name, &gross, &net); err != nil {
				return err
			}
			t.GrossPay = money(gross)
			t.NetPay = money(net)
			totals = append(totals, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// monthRange returns [first day of month, first day of next month) as
// YYYY-MM-DD strings.
func monthRange(year, month int) (string, string, error) {
	if month < 1 || month > 12 {
		return "", "", domain.NewValidationError("month", "must be between 1 and 12")
	}
	if year < 1 || year > 9998 {
		return "", "", domain.NewValidationError("year", "is out of range")
	}
	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextYear, nextMonth = year+1, 1
	}
	return fmt.Sprintf("%04d-%02d-01", year, month), fmt.Sprintf("%04d-%02d-01", nextYear, nextMonth), nil
}
