package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/logger"
	"github.com/locvowork/employee_management_sample/ems/internal/service/serviceutils"
)

var errInternal = errors.New("internal error")

// respondErr maps service errors to status codes: validation 400, forbidden
// 403, not found 404, anything else 500 with the cause kept out of the body.
func respondErr(c echo.Context, message string, err error) error {
	switch {
	case domain.IsValidation(err):
		return serviceutils.ResponseError(c, http.StatusBadRequest, message, err)
	case errors.Is(err, domain.ErrForbidden):
		return serviceutils.ResponseError(c, http.StatusForbidden, message, err)
	case errors.Is(err, domain.ErrNotFound):
		return serviceutils.ResponseError(c, http.StatusNotFound, message, err)
	}
	logger.ErrorLogErr(c.Request().Context(), err, "%s", message)
	return serviceutils.ResponseError(c, http.StatusInternalServerError, message, errInternal)
}

func intParam(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

func pathID(c echo.Context, name string) (int, error) {
	return intParam(c.Param(name), name)
}
