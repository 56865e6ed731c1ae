package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/locvowork/employee_management_sample/ems/internal/database"
	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/logger"
	"github.com/locvowork/employee_management_sample/ems/internal/repository/builder"
)

// querier is satisfied by both *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// errEmployeeMissing aborts a transaction whose target employee does not exist.
var errEmployeeMissing = errors.New("employee does not exist")

type employeeRepository struct {
	provider *database.Provider
	dialect  database.Dialect
	auth     domain.AuthPolicy
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(provider *database.Provider, auth domain.AuthPolicy) domain.EmployeeRepository {
	return &employeeRepository{
		provider: provider,
		dialect:  provider.Dialect(),
		auth:     auth,
	}
}

func (r *employeeRepository) qb() *builder.SQLBuilder {
	return r.dialect.Builder()
}

// withConn runs fn on a connection scoped to this call.
func (r *employeeRepository) withConn(ctx context.Context, op string, fn func(q querier) error) error {
	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return r.fail(ctx, op, err)
	}
	defer r.provider.Release(conn)

	if err := fn(conn); err != nil {
		return r.fail(ctx, op, err)
	}
	return nil
}

// withTx runs fn in a transaction on a connection scoped to this call. Any
// error rolls back every statement fn issued.
func (r *employeeRepository) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return r.fail(ctx, op, err)
	}
	defer r.provider.Release(conn)

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return r.fail(ctx, op, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.ErrorLogErr(ctx, rbErr, "Failed to rollback %s", op)
		}
		return r.fail(ctx, op, err)
	}

	if err := tx.Commit(); err != nil {
		return r.fail(ctx, op, err)
	}
	return nil
}

// fail logs a store failure and wraps it. Caller mistakes and the internal
// missing-employee signal pass through untouched.
func (r *employeeRepository) fail(ctx context.Context, op string, err error) error {
	if domain.IsValidation(err) || errors.Is(err, errEmployeeMissing) {
		return err
	}
	logger.OpError(ctx, op, err)
	return &domain.DataAccessError{Op: op, Err: err}
}

// employeeQuery is the base left join shared by every employee read.
func (r *employeeRepository) employeeQuery() *builder.SQLBuilder {
	return r.qb().
		Select(employeeColumns...).
		From("employees e").
		LeftJoin("address a", "a.empid = e.empid").
		LeftJoin("employee_job_titles ejt", "ejt.empid = e.empid").
		LeftJoin("job_titles jt", "jt.job_title_id = ejt.job_title_id").
		LeftJoin("employee_division ed", "ed.empid = e.empid").
		LeftJoin("division d", "d.id = ed.div_id")
}

func (r *employeeRepository) GetEmployee(ctx context.Context, id int) (*domain.Employee, error) {
	query, args := r.employeeQuery().Where("e.empid = ?", id).Build()

	var found *domain.Employee
	err := r.withConn(ctx, "GetEmployee", func(q querier) error {
		e, err := scanEmployee(q.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// SearchByName matches fragment case-insensitively anywhere in
// "first_name last_name". LIKE wildcards in fragment match literally.
func (r *employeeRepository) SearchByName(ctx context.Context, fragment string) ([]domain.Employee, error) {
	pattern := "%" + escapeLike(strings.ToLower(fragment)) + "%"
	return r.search(ctx, "SearchByName",
		r.dialect.Lower("COALESCE(e.first_name, '') || ' ' || COALESCE(e.last_name, '')")+` LIKE ? ESCAPE '\'`, pattern)
}

func (r *employeeRepository) SearchByDOB(ctx context.Context, dob string) ([]domain.Employee, error) {
	dob = strings.TrimSpace(dob)
	if _, err := domain.ParseDate("dob", dob); err != nil {
		return nil, err
	}
	return r.search(ctx, "SearchByDOB", "e.dob = ?", dob)
}

func (r *employeeRepository) SearchBySSN(ctx context.Context, ssn string) ([]domain.Employee, error) {
	return r.search(ctx, "SearchBySSN", "e.ssn = ?", strings.TrimSpace(ssn))
}

func (r *employeeRepository) search(ctx context.Context, op, cond string, arg interface{}) ([]domain.Employee, error) {
	query, args := r.employeeQuery().Where(cond, arg).OrderBy("e.empid").Build()

	var employees []domain.Employee
	err := r.withConn(ctx, op, func(q querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		employees, err = scanEmployees(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return employees, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// employeeExists checks the employee row inside an open transaction.
func (r *employeeRepository) employeeExists(ctx context.Context, q querier, id int) (bool, error) {
	query, args := r.qb().Select("1").From("employees").Where("empid = ?", id).Build()

	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// requireReference fails with a ValidationError naming field when no row of
// table has column = id.
func (r *employeeRepository) requireReference(ctx context.Context, q querier, table, column string, id int, field string) error {
	query, args := r.qb().Select("1").From(table).Where(column+" = ?", id).Build()

	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewValidationError(field, "references a missing "+table+" row")
	}
	return err
}
