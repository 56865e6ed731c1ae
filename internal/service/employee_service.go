package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/logger"
)

// PayDimension selects how monthly pay totals are grouped.
type PayDimension string

const (
	DimensionJobTitle PayDimension = "job-title"
	DimensionDivision PayDimension = "division"
)

// ParseDimension accepts "job-title", "job_title", "jobtitle" and "division".
func ParseDimension(s string) (PayDimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "job-title", "job_title", "jobtitle":
		return DimensionJobTitle, nil
	case "division", "divisions":
		return DimensionDivision, nil
	}
	return "", domain.NewValidationError("dimension", "must be job-title or division")
}

// Label is the column header used for the dimension in reports.
func (d PayDimension) Label() string {
	if d == DimensionDivision {
		return "Division"
	}
	return "Job Title"
}

// SearchQuery holds exactly one employee search criterion.
type SearchQuery struct {
	Name string
	DOB  string
	SSN  string
}

// SalaryAdjustment raises (or lowers) every salary in [Min, Max] by Percent.
type SalaryAdjustment struct {
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	Percent decimal.Decimal `json:"percent"`
}

// ReferenceData is every lookup table in one value.
type ReferenceData struct {
	JobTitles map[int]string `json:"job_titles"`
	Divisions map[int]string `json:"divisions"`
	Cities    []domain.City  `json:"cities"`
	States    []domain.State `json:"states"`
}

// EmployeeService applies session rules on top of the employee repository.
// Admins may call everything. Employees may read their own record and their
// own pay history, and update their own address and any allow-listed field
// except salary; anything else returns domain.ErrForbidden.
type EmployeeService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.Session, error)

	Get(ctx context.Context, s *domain.Session, id int) (*domain.Employee, error)
	Search(ctx context.Context, s *domain.Session, q SearchQuery) ([]domain.Employee, error)
	Create(ctx context.Context, s *domain.Session, e domain.NewEmployee) (int, error)
	UpdateField(ctx context.Context, s *domain.Session, id int, field, value string) error
	UpdateAddress(ctx context.Context, s *domain.Session, id int, addr domain.Address) error
	AssignJobTitle(ctx context.Context, s *domain.Session, id, jobTitleID int) error
	AssignDivision(ctx context.Context, s *domain.Session, id, divisionID int) error
	AdjustSalaries(ctx context.Context, s *domain.Session, adj SalaryAdjustment) (int64, error)
	Delete(ctx context.Context, s *domain.Session, id int) error

	PayHistory(ctx context.Context, s *domain.Session, id int) ([]domain.PayStatement, error)
	TotalPay(ctx context.Context, s *domain.Session, dim PayDimension, year, month int) ([]domain.PayTotal, error)

	JobTitles(ctx context.Context, s *domain.Session) (map[int]string, error)
	Divisions(ctx context.Context, s *domain.Session) (map[int]string, error)
	Cities(ctx context.Context, s *domain.Session) ([]domain.City, error)
	States(ctx context.Context, s *domain.Session) ([]domain.State, error)
	Reference(ctx context.Context, s *domain.Session) (*ReferenceData, error)
}

type employeeService struct {
	repo domain.EmployeeRepository
}

func NewEmployeeService(repo domain.EmployeeRepository) EmployeeService {
	return &employeeService{repo: repo}
}

func requireAdmin(ctx context.Context, s *domain.Session) error {
	if s == nil || !s.IsAdmin() {
		logger.WarnLog(ctx, "Rejected admin-only call from %v", s)
		return domain.ErrForbidden
	}
	return nil
}

func requireAccess(ctx context.Context, s *domain.Session, id int) error {
	if s == nil || !s.CanAccess(id) {
		logger.WarnLog(ctx, "Rejected access to employee %d from %v", id, s)
		return domain.ErrForbidden
	}
	return nil
}

// found maps a false "row existed" result to domain.ErrNotFound.
func found(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (es *employeeService) Authenticate(ctx context.Context, username, password string) (*domain.Session, error) {
	return es.repo.Authenticate(ctx, username, password)
}

func (es *employeeService) Get(ctx context.Context, s *domain.Session, id int) (*domain.Employee, error) {
	if err := requireAccess(ctx, s, id); err != nil {
		return nil, err
	}
	e, err := es.repo.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (es *employeeService) Search(ctx context.Context, s *domain.Session, q SearchQuery) ([]domain.Employee, error) {
	if err := requireAdmin(ctx, s); err != nil {
		return nil, err
	}

	set := 0
	for _, v := range []string{q.Name, q.DOB, q.SSN} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set != 1 {
		return nil, domain.NewValidationError("search", "exactly one of name, dob or ssn is required")
	}

	switch {
	case strings.TrimSpace(q.Name) != "":
		return es.repo.SearchByName(ctx, q.Name)
	case strings.TrimSpace(q.DOB) != "":
		return es.repo.SearchByDOB(ctx, q.DOB)
	default:
		return es.repo.SearchBySSN(ctx, q.SSN)
	}
}

func (es *employeeService) Create(ctx context.Context, s *domain.Session, e domain.NewEmployee) (int, error) {
	if err := requireAdmin(ctx, s); err != nil {
		return 0, err
	}
	id, err := es.repo.InsertEmployee(ctx, e)
	if err != nil {
		return 0, err
	}
	logger.InfoLog(ctx, "Created employee %d", id)
	return id, nil
}

func (es *employeeService) UpdateField(ctx context.Context, s *domain.Session, id int, field, value string) error {
	if err := requireAccess(ctx, s, id); err != nil {
		return err
	}
	if !s.IsAdmin() {
		f, err := domain.LookupField(field)
		if err != nil {
			return err
		}
		if f.AdminOnly {
			logger.WarnLog(ctx, "Rejected update of %s on employee %d from %v", f.Name, id, s)
			return domain.ErrForbidden
		}
	}
	return found(es.repo.UpdateField(ctx, id, field, value))
}

func (es *employeeService) UpdateAddress(ctx context.Context, s *domain.Session, id int, addr domain.Address) error {
	if err := requireAccess(ctx, s, id); err != nil {
		return err
	}
	return found(es.repo.UpdateAddress(ctx, id, addr))
}

func (es *employeeService) AssignJobTitle(ctx context.Context, s *domain.Session, id, jobTitleID int) error {
	if err := requireAdmin(ctx, s); err != nil {
		return err
	}
	return found(es.repo.AssignJobTitle(ctx, id, jobTitleID))
}

func (es *employeeService) AssignDivision(ctx context.Context, s *domain.Session, id, divisionID int) error {
	if err := requireAdmin(ctx, s); err != nil {
		return err
	}
	return found(es.repo.AssignDivision(ctx, id, divisionID))
}

func (es *employeeService) AdjustSalaries(ctx context.Context, s *domain.Session, adj SalaryAdjustment) (int64, error) {
	if err := requireAdmin(ctx, s); err != nil {
		return 0, err
	}
	n, err := es.repo.UpdateSalariesInRange(ctx, adj.Min, adj.Max, adj.Percent)
	if err != nil {
		return 0, err
	}
	logger.InfoLog(ctx, "Adjusted %d salaries in [%s, %s] by %s%%", n, adj.Min, adj.Max, adj.Percent)
	return n, nil
}

func (es *employeeService) Delete(ctx context.Context, s *domain.Session, id int) error {
	if err := requireAdmin(ctx, s); err != nil {
		return err
	}
	if err := found(es.repo.DeleteEmployee(ctx, id)); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Deleted employee %d", id)
	return nil
}

// PayHistory returns pay statements for id. Only admins may pass 0 for all
// employees.
func (es *employeeService) PayHistory(ctx context.Context, s *domain.Session, id int) ([]domain.PayStatement, error) {
	if id == 0 {
		if err := requireAdmin(ctx, s); err != nil {
			return nil, err
		}
	} else if err := requireAccess(ctx, s, id); err != nil {
		return nil, err
	}
	return es.repo.GetPayStatementHistory(ctx, id)
}

func (es *employeeService) TotalPay(ctx context.Context, s *domain.Session, dim PayDimension, year, month int) ([]domain.PayTotal, error) {
	if err := requireAdmin(ctx, s); err != nil {
		return nil, err
	}
	switch dim {
	case DimensionJobTitle:
		return es.repo.GetTotalPayByJobTitle(ctx, year, month)
	case DimensionDivision:
		return es.repo.GetTotalPayByDivision(ctx, year, month)
	}
	return nil, domain.NewValidationError("dimension", "must be job-title or division")
}

func (es *employeeService) JobTitles(ctx context.Context, s *domain.Session) (map[int]string, error) {
	if err := requireAdmin(ctx, s); err != nil {
		return nil, err
	}
	return es.repo.GetJobTitles(ctx)
}

func (es *employeeService) Divisions(ctx context.Context, s *domain.Session) (map[int]string, error) {
	if err := requireAdmin(ctx, s); err != nil {
		return nil, err
	}
	return es.repo.GetDivisions(ctx)
}

func (es *employeeService) Cities(ctx context.Context, s *domain.Session) ([]domain.City, error) {
	if err := requireAdmin(ctx, s); err != nil {
		return nil, err
	}
	return es.repo.GetCities(ctx)
}

func (es *employeeService) States(ctx context.Context, s *domain.Session) ([]domain.State, error) {
	if err := requireAdmin(ctx, s); err != nil {
		return nil, err
	}
	return es.repo.GetStates(ctx)
}

func (es *employeeService) Reference(ctx context.Context, s *domain.Session) (*ReferenceData, error) {
	var ref ReferenceData
	var err error
	if ref.JobTitles, err = es.JobTitles(ctx, s); err != nil {
		return nil, err
	}
	if ref.Divisions, err = es.Divisions(ctx, s); err != nil {
		return nil, err
	}
	if ref.Cities, err = es.Cities(ctx, s); err != nil {
		return nil, err
	}
	if ref.States, err = es.States(ctx, s); err != nil {
		return nil, err
	}
	return &ref, nil
}
