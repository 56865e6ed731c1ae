package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_management_sample/ems/internal/service"
	"github.com/locvowork/employee_management_sample/ems/internal/service/serviceutils"
)

type ReferenceHandler struct {
	svc service.EmployeeService
}

func NewReferenceHandler(svc service.EmployeeService) *ReferenceHandler {
	return &ReferenceHandler{svc: svc}
}

func (h *ReferenceHandler) AllHandler(c echo.Context) error {
	ctx := c.Request().Context()
	ref, err := h.svc.Reference(ctx, SessionFrom(ctx))
	if err != nil {
		return respondErr(c, "Failed to get reference data", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Reference data retrieved successfully", ref)
}

func (h *ReferenceHandler) JobTitlesHandler(c echo.Context) error {
	ctx := c.Request().Context()
	titles, err := h.svc.JobTitles(ctx, SessionFrom(ctx))
	if err != nil {
		return respondErr(c, "Failed to get job titles", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Job titles retrieved successfully", titles)
}

func (h *ReferenceHandler) DivisionsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	divisions, err := h.svc.Divisions(ctx, SessionFrom(ctx))
	if err != nil {
		return respondErr(c, "Failed to get divisions", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Divisions retrieved successfully", divisions)
}

func (h *ReferenceHandler) CitiesHandler(c echo.Context) error {
	ctx := c.Request().Context()
	cities, err := h.svc.Cities(ctx, SessionFrom(ctx))
	if err != nil {
		return respondErr(c, "Failed to get cities", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Cities retrieved successfully", cities)
}

func (h *ReferenceHandler) StatesHandler(c echo.Context) error {
	ctx := c.Request().Context()
	states, err := h.svc.States(ctx, SessionFrom(ctx))
	if err != nil {
		return respondErr(c, "Failed to get states", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "States retrieved successfully", states)
}
