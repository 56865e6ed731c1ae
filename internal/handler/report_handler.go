package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/report"
	"github.com/locvowork/employee_management_sample/ems/internal/service"
	"github.com/locvowork/employee_management_sample/ems/internal/service/serviceutils"
)

type ReportHandler struct {
	svc     service.EmployeeService
	reports *report.Reports
}

func NewReportHandler(svc service.EmployeeService, reports *report.Reports) *ReportHandler {
	return &ReportHandler{svc: svc, reports: reports}
}

// PayHistoryHandler serves JSON, or a workbook with ?format=xlsx|csv.
func (h *ReportHandler) PayHistoryHandler(c echo.Context) error {
	id, err := pathID(c, "empid")
	if err != nil {
		return respondErr(c, "Invalid employee ID", err)
	}

	ctx := c.Request().Context()
	statements, err := h.svc.PayHistory(ctx, SessionFrom(ctx), id)
	if err != nil {
		return respondErr(c, "Failed to get pay history", err)
	}

	format := strings.ToLower(c.QueryParam("format"))
	if format == "" || format == "json" {
		return serviceutils.ResponseSuccess(c, http.StatusOK, "Pay history retrieved successfully", statements)
	}

	exporter, err := h.reports.PayHistory(id, statements)
	if err != nil {
		return respondErr(c, "Failed to build report", err)
	}
	return h.send(c, exporter, fmt.Sprintf("pay-history-%d", id), format)
}

func (h *ReportHandler) TotalPayHandler(c echo.Context) error {
	dim, year, month, err := totalPayParams(c)
	if err != nil {
		return respondErr(c, "Invalid report parameters", err)
	}

	ctx := c.Request().Context()
	totals, err := h.svc.TotalPay(ctx, SessionFrom(ctx), dim, year, month)
	if err != nil {
		return respondErr(c, "Failed to get total pay", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Total pay retrieved successfully", totals)
}

// ExportTotalPayHandler serves the monthly totals as xlsx, or csv with
// ?format=csv.
func (h *ReportHandler) ExportTotalPayHandler(c echo.Context) error {
	dim, year, month, err := totalPayParams(c)
	if err != nil {
		return respondErr(c, "Invalid report parameters", err)
	}

	ctx := c.Request().Context()
	totals, err := h.svc.TotalPay(ctx, SessionFrom(ctx), dim, year, month)
	if err != nil {
		return respondErr(c, "Failed to get total pay", err)
	}

	exporter, err := h.reports.TotalPay(dim.Label(), year, month, totals)
	if err != nil {
		return respondErr(c, "Failed to build report", err)
	}

	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = "xlsx"
	}
	return h.send(c, exporter, report.Filename("total-pay-"+string(dim), year, month), format)
}

func (h *ReportHandler) send(c echo.Context, exporter *report.DataExporter, name, format string) error {
	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "xlsx":
		data, err = exporter.ToBytes()
		contentType = report.ContentTypeXLSX
	case "csv":
		data, err = exporter.ToCSVBytes()
		contentType = report.ContentTypeCSV
	default:
		return respondErr(c, "Invalid report parameters", domain.NewValidationError("format", "must be xlsx or csv"))
	}
	if err != nil {
		return respondErr(c, "Failed to generate report", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.%s"`, name, format))
	return c.Blob(http.StatusOK, contentType, data)
}

func totalPayParams(c echo.Context) (service.PayDimension, int, int, error) {
	dim, err := service.ParseDimension(c.Param("dimension"))
	if err != nil {
		return "", 0, 0, err
	}
	year, err := intParam(c.QueryParam("year"), "year")
	if err != nil {
		return "", 0, 0, err
	}
	month, err := intParam(c.QueryParam("month"), "month")
	if err != nil {
		return "", 0, 0, err
	}
	return dim, year, month, nil
}
