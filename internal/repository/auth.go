package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
)

// Authenticate checks the configured admin pair first; the admin username
// never falls through to the employee login. Employees log in as
// "First_Last" with their employee id as password. A failed login is a nil
// session, not an error.
func (r *employeeRepository) Authenticate(ctx context.Context, username, password string) (*domain.Session, error) {
	if r.auth.AdminUser != "" && username == r.auth.AdminUser {
		if r.auth.AdminPassword != "" && password == r.auth.AdminPassword {
			return &domain.Session{Role: domain.RoleAdmin, ID: 0}, nil
		}
		return nil, nil
	}

	if !r.auth.EmployeeLogin || !strings.Contains(username, "_") {
		return nil, nil
	}
	id, err := strconv.Atoi(password)
	if err != nil || id <= 0 {
		return nil, nil
	}

	query, args := r.qb().
		Select("e.empid").
		From("employees e").
		Where("e.empid = ?", id).
		Where("COALESCE(e.first_name, '') || '_' || COALESCE(e.last_name, '') = ?", username).
		Build()

	var session *domain.Session
	err = r.withConn(ctx, "Authenticate", func(q querier) error {
		var empID int
		err := q.QueryRowContext(ctx, query, args...).Scan(&empID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		session = &domain.Session{Role: domain.RoleEmployee, ID: empID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}
