package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

// Reports builds exporters for the payroll reports from one template.
type Reports struct {
	tmpl *ReportTemplate
}

func NewReports(tmpl *ReportTemplate) *Reports {
	if tmpl == nil {
		tmpl = DefaultTemplate()
	}
	return &Reports{tmpl: tmpl}
}

// TotalPay lays out monthly totals grouped by dimension, e.g. "Job Title".
func (r *Reports) TotalPay(dimension string, year, month int, totals []domain.PayTotal) (*DataExporter, error) {
	period := fmt.Sprintf("%s %d", time.Month(month), year)
	return r.build("total_pay", totals, "{dimension}", dimension, "{period}", period)
}

// PayHistory lays out pay statements of one employee, or everyone when
// empID is 0.
func (r *Reports) PayHistory(empID int, statements []domain.PayStatement) (*DataExporter, error) {
	scope := "all employees"
	if empID != 0 {
		scope = fmt.Sprintf("employee %d", empID)
	}
	return r.build("pay_history", statements, "{scope}", scope)
}

func (r *Reports) build(id string, data interface{}, placeholders ...string) (*DataExporter, error) {
	sheet, sec, err := r.tmpl.section(id)
	if err != nil {
		return nil, err
	}

	fill := strings.NewReplacer(placeholders...)
	sec.Title = fill.Replace(sec.Title)
	for i := range sec.Columns {
		sec.Columns[i].Header = fill.Replace(sec.Columns[i].Header)
	}
	sec.Data = data

	return NewDataExporter().AddSheet(sheet).AddSection(&sec).Build(), nil
}

// Filename names a report download without extension, e.g.
// "total-pay-division-2025-01".
func Filename(kind string, year, month int) string {
	return fmt.Sprintf("%s-%04d-%02d", kind, year, month)
}
