package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is displayed for a job title or division the employee is not
// associated with.
const NotAvailable = "Not Available"

// DateLayout is the only accepted rendering of dob, hire_date and pay_date.
const DateLayout = "2006-01-02"

// ==================== SESSION ====================

// Role is the authenticated role of a session.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Session is the result of a successful authentication.
// Admin sessions always carry ID 0.
type Session struct {
	Role Role `json:"role"`
	ID   int  `json:"id"`
}

// IsAdmin reports whether the session has the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// CanAccess reports whether the session may read data owned by employee id.
func (s Session) CanAccess(id int) bool {
	return s.IsAdmin() || (s.Role == RoleEmployee && s.ID == id)
}

// AuthPolicy configures which credential checks Authenticate performs.
type AuthPolicy struct {
	AdminUser     string
	AdminPassword string
	// EmployeeLogin enables the "First_Last" / employee id login.
	EmployeeLogin bool
}

// ==================== EMPLOYEE ====================

// Address represents the address table
type Address struct {
	Street  string `json:"street"`
	CityID  int    `json:"city_id"`
	StateID int    `json:"state_id"`
	Zip     string `json:"zip"`
}

// IsZero reports whether no address field is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Employee represents the employees table joined with its address, job title
// and division.
type Employee struct {
	ID           int             `json:"id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Gender       string          `json:"gender"`
	Race         string          `json:"race"`
	SSN          string          `json:"ssn"`
	DOB          string          `json:"dob"`
	HireDate     string          `json:"hire_date"`
	Salary       decimal.Decimal `json:"salary"`
	JobTitle     string          `json:"job_title"`
	DivisionName string          `json:"division_name"`
	Address      Address         `json:"address"`
}

// FullName returns "First Last".
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// LoginName returns the username used by the employee login policy.
func (e Employee) LoginName() string {
	return e.FirstName + "_" + e.LastName
}

// NewEmployee carries everything written by InsertEmployee.
// ID is optional: zero lets the store generate one.
type NewEmployee struct {
	ID         int             `json:"id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Gender     string          `json:"gender"`
	Race       string          `json:"race"`
	SSN        string          `json:"ssn"`
	DOB        string          `json:"dob"`
	HireDate   string          `json:"hire_date"`
	Salary     decimal.Decimal `json:"salary"`
	JobTitleID int             `json:"job_title_id"`
	DivisionID int             `json:"division_id"`
	Address    Address         `json:"address"`
}

// Validate checks the fields that can be verified without the store.
func (n NewEmployee) Validate() error {
	if n.ID < 0 {
		return NewValidationError("id", "must not be negative")
	}
	if strings.TrimSpace(n.FirstName) == "" {
		return NewValidationError("first_name", "is required")
	}
	if strings.TrimSpace(n.LastName) == "" {
		return NewValidationError("last_name", "is required")
	}
	if n.Salary.IsNegative() {
		return NewValidationError("salary", "must not be negative")
	}
	if err := validateOptionalDate("dob", n.DOB); err != nil {
		return err
	}
	if err := validateOptionalDate("hire_date", n.HireDate); err != nil {
		return err
	}
	if n.JobTitleID <= 0 {
		return NewValidationError("job_title_id", "is required")
	}
	if n.DivisionID <= 0 {
		return NewValidationError("division_id", "is required")
	}
	return n.Address.Validate()
}

// Validate checks that both references of the address are set.
func (a Address) Validate() error {
	if a.CityID <= 0 {
		return NewValidationError("city_id", "is required")
	}
	if a.StateID <= 0 {
		return NewValidationError("state_id", "is required")
	}
	return nil
}

// ==================== PAYROLL ====================

// PayStatement is one payroll row joined to the employee, job title and
// division. NetPay is GrossPay minus Deductions.
type PayStatement struct {
	PayID        int             `json:"pay_id"`
	EmployeeID   int             `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	PayDate      string          `json:"pay_date"`
	GrossPay     decimal.Decimal `json:"gross_pay"`
	Deductions   decimal.Decimal `json:"deductions"`
	NetPay       decimal.Decimal `json:"net_pay"`
	HoursWorked  decimal.Decimal `json:"hours_worked"`
	JobTitle     string          `json:"job_title"`
	DivisionName string          `json:"division_name"`
}

// PayTotal is one group of a monthly pay report.
type PayTotal struct {
	Name     string          `json:"name"`
	GrossPay decimal.Decimal `json:"gross_pay"`
	NetPay   decimal.Decimal `json:"net_pay"`
}

// ==================== REFERENCE DATA ====================

// City represents the city table
type City struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// State represents the state table
type State struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
