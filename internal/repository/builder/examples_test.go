package builder_test

import (
	"fmt"

	"github.com/locvowork/employee_management_sample/ems/internal/repository/builder"
)

// Example_leftJoins shows the employee lookup shape used by the repository.
func Example_leftJoins() {
	qb := builder.NewSQLBuilder().
		Select("e.empid", "e.first_name", "jt.job_title").
		From("employees e").
		LeftJoin("employee_job_titles ejt", "ejt.empid = e.empid").
		LeftJoin("job_titles jt", "jt.job_title_id = ejt.job_title_id").
		Where("e.empid = ?", 42)

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: SELECT e.empid, e.first_name, jt.job_title FROM employees e LEFT JOIN employee_job_titles ejt ON ejt.empid = e.empid LEFT JOIN job_titles jt ON jt.job_title_id = ejt.job_title_id WHERE e.empid = $1
	// Args: [42]
}

// Example_whereRaw demonstrates a tri-state filter where 0 means "all".
func Example_whereRaw() {
	qb := builder.NewSQLBuilder().
		Select("p.empid", "p.pay_date").
		From("payroll p").
		WhereRaw("? = 0 OR p.empid = ?", 0, 0).
		OrderBy("p.empid").
		OrderBy("p.pay_date DESC")

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: SELECT p.empid, p.pay_date FROM payroll p WHERE ($1 = 0 OR p.empid = $2) ORDER BY p.empid, p.pay_date DESC
	// Args: [0 0]
}

// Example_questionFormat renders sqlite placeholders.
func Example_questionFormat() {
	sql, args := builder.NewSQLBuilder().
		WithFormat(builder.Question).
		Insert("employee_division", "empid", "div_id").
		Values(7, 2).
		Build()

	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: INSERT INTO employee_division (empid, div_id) VALUES (?, ?)
	// Args: [7 2]
}
