package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/employee_management_sample/ems/internal/config"
	"github.com/locvowork/employee_management_sample/ems/internal/database"
	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/handler"
	"github.com/locvowork/employee_management_sample/ems/internal/logger"
	"github.com/locvowork/employee_management_sample/ems/internal/report"
	"github.com/locvowork/employee_management_sample/ems/internal/repository"
	"github.com/locvowork/employee_management_sample/ems/internal/seeder"
	"github.com/locvowork/employee_management_sample/ems/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Echo     *echo.Echo
	Provider *database.Provider
	Repo     domain.EmployeeRepository
	Service  service.EmployeeService
	Reports  *report.Reports
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	return &App{Echo: e}
}

// Initialize connects the app and mounts middlewares and routes.
func (a *App) Initialize(ctx context.Context, envFiles ...string) error {
	if err := a.Connect(ctx, envFiles...); err != nil {
		return err
	}
	a.Mount()
	return nil
}

// Mount registers middlewares and routes on a connected app.
func (a *App) Mount() {
	a.RegisterMiddlewares()
	handler.RegisterRoutes(a.Echo, a.Service, a.Reports)
}

// Connect loads configuration, opens the store and builds the service layer
// without touching HTTP. envFiles are optional dotenv files read before the
// process environment.
func (a *App) Connect(ctx context.Context, envFiles ...string) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(envFiles...); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	logger.InitLogging(cfg.LOG_LEVEL, cfg.LOG_FILE_PATH)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	tmpl, err := report.LoadTemplate(cfg.REPORT_TEMPLATE)
	if err != nil {
		return fmt.Errorf("failed to load report template: %w", err)
	}

	p, err := database.Open(ctx, cfg.DatabaseConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.Provider = p

	a.Repo = repository.NewEmployeeRepository(p, cfg.AuthPolicy())
	a.Service = service.NewEmployeeService(a.Repo)
	a.Reports = report.NewReports(tmpl)
	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(handler.RequestID())
	a.Echo.Use(handler.RequestLogger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

// Seeder returns a data seeder bound to the app's store.
func (a *App) Seeder() *seeder.DataSeeder {
	return seeder.NewDataSeeder(a.Provider, a.Repo)
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
// The caller closes the store.
func (a *App) Run(ctx context.Context) error {
	addr := ":" + strconv.Itoa(config.DefaultEnvConfig.APP_PORT)
	errCh := make(chan error, 1)
	go func() {
		logger.InfoLog(ctx, "Listening on %s", addr)
		errCh <- a.Echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.InfoLog(ctx, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

// Close releases the store connection pool.
func (a *App) Close() error {
	if a.Provider == nil {
		return nil
	}
	return a.Provider.Close()
}
