package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/service"
	"github.com/locvowork/employee_management_sample/ems/internal/service/serviceutils"
)

type EmployeeHandler struct {
	svc service.EmployeeService
}

func NewEmployeeHandler(svc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

type fieldRequest struct {
	Value *string `json:"value"`
}

type jobTitleRequest struct {
	JobTitleID int `json:"job_title_id"`
}

type divisionRequest struct {
	DivisionID int `json:"division_id"`
}

type meResponse struct {
	Session  *domain.Session  `json:"session"`
	Employee *domain.Employee `json:"employee,omitempty"`
}

func (h *EmployeeHandler) MeHandler(c echo.Context) error {
	ctx := c.Request().Context()
	s := SessionFrom(ctx)
	resp := meResponse{Session: s}

	if s != nil && !s.IsAdmin() {
		emp, err := h.svc.Get(ctx, s, s.ID)
		if err != nil {
			return respondErr(c, "Failed to get current employee", err)
		}
		resp.Employee = emp
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Session retrieved successfully", resp)
}

func (h *EmployeeHandler) GetHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, "Invalid employee ID", err)
	}

	ctx := c.Request().Context()
	emp, err := h.svc.Get(ctx, SessionFrom(ctx), id)
	if err != nil {
		return respondErr(c, "Failed to get employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee retrieved successfully", emp)
}

func (h *EmployeeHandler) SearchHandler(c echo.Context) error {
	q := service.SearchQuery{
		Name: c.QueryParam("name"),
		DOB:  c.QueryParam("dob"),
		SSN:  c.QueryParam("ssn"),
	}

	ctx := c.Request().Context()
	employees, err := h.svc.Search(ctx, SessionFrom(ctx), q)
	if err != nil {
		return respondErr(c, "Failed to search employees", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees searched successfully", employees)
}

func (h *EmployeeHandler) CreateHandler(c echo.Context) error {
	var req domain.NewEmployee
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	ctx := c.Request().Context()
	id, err := h.svc.Create(ctx, SessionFrom(ctx), req)
	if err != nil {
		return respondErr(c, "Failed to create employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Employee created successfully", map[string]int{"id": id})
}

func (h *EmployeeHandler) UpdateFieldHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, "Invalid employee ID", err)
	}
	var req fieldRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if req.Value == nil {
		return respondErr(c, "Invalid request body", domain.NewValidationError("value", "is required"))
	}

	ctx := c.Request().Context()
	if err := h.svc.UpdateField(ctx, SessionFrom(ctx), id, c.Param("field"), *req.Value); err != nil {
		return respondErr(c, "Failed to update employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee updated successfully", nil)
}

func (h *EmployeeHandler) UpdateAddressHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, "Invalid employee ID", err)
	}
	var req domain.Address
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	ctx := c.Request().Context()
	if err := h.svc.UpdateAddress(ctx, SessionFrom(ctx), id, req); err != nil {
		return respondErr(c, "Failed to update address", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Address updated successfully", nil)
}

func (h *EmployeeHandler) AssignJobTitleHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, "Invalid employee ID", err)
	}
	var req jobTitleRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	ctx := c.Request().Context()
	if err := h.svc.AssignJobTitle(ctx, SessionFrom(ctx), id, req.JobTitleID); err != nil {
		return respondErr(c, "Failed to assign job title", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Job title assigned successfully", nil)
}

func (h *EmployeeHandler) AssignDivisionHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, "Invalid employee ID", err)
	}
	var req divisionRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	ctx := c.Request().Context()
	if err := h.svc.AssignDivision(ctx, SessionFrom(ctx), id, req.DivisionID); err != nil {
		return respondErr(c, "Failed to assign division", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Division assigned successfully", nil)
}

func (h *EmployeeHandler) DeleteHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondErr(c, "Invalid employee ID", err)
	}

	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, SessionFrom(ctx), id); err != nil {
		return respondErr(c, "Failed to delete employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee deleted successfully", nil)
}

func (h *EmployeeHandler) AdjustSalariesHandler(c echo.Context) error {
	var req service.SalaryAdjustment
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	ctx := c.Request().Context()
	n, err := h.svc.AdjustSalaries(ctx, SessionFrom(ctx), req)
	if err != nil {
		return respondErr(c, "Failed to adjust salaries", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Salaries adjusted successfully", map[string]int64{"updated": n})
}
