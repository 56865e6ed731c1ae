package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_management_sample/ems/internal/report"
	"github.com/locvowork/employee_management_sample/ems/internal/service"
)

// RegisterRoutes mounts the API on e behind BasicAuth.
func RegisterRoutes(e *echo.Echo, svc service.EmployeeService, reports *report.Reports) {
	empHandler := NewEmployeeHandler(svc)
	reportHandler := NewReportHandler(svc, reports)
	refHandler := NewReferenceHandler(svc)

	api := e.Group("", BasicAuth(svc))

	api.GET("/me", empHandler.MeHandler)

	employees := api.Group("/employees")
	employees.GET("/search", empHandler.SearchHandler)
	employees.GET("/:id", empHandler.GetHandler)
	employees.POST("", empHandler.CreateHandler)
	employees.PATCH("/:id/fields/:field", empHandler.UpdateFieldHandler)
	employees.PUT("/:id/address", empHandler.UpdateAddressHandler)
	employees.PUT("/:id/job-title", empHandler.AssignJobTitleHandler)
	employees.PUT("/:id/division", empHandler.AssignDivisionHandler)
	employees.DELETE("/:id", empHandler.DeleteHandler)

	api.POST("/salaries/adjust", empHandler.AdjustSalariesHandler)

	reportGroup := api.Group("/reports")
	reportGroup.GET("/pay-history/:empid", reportHandler.PayHistoryHandler)
	reportGroup.GET("/total-pay/:dimension", reportHandler.TotalPayHandler)
	reportGroup.GET("/total-pay/:dimension/export", reportHandler.ExportTotalPayHandler)

	ref := api.Group("/reference")
	ref.GET("", refHandler.AllHandler)
	ref.GET("/job-titles", refHandler.JobTitlesHandler)
	ref.GET("/divisions", refHandler.DivisionsHandler)
	ref.GET("/cities", refHandler.CitiesHandler)
	ref.GET("/states", refHandler.StatesHandler)
}
