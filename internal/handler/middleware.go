package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
	"github.com/locvowork/employee_management_sample/ems/internal/logger"
	"github.com/locvowork/employee_management_sample/ems/internal/service"
)

type sessionKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by BasicAuth, or nil.
func SessionFrom(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey{}).(*domain.Session)
	return s
}

// BasicAuth authenticates every request and stores the resulting session in
// the request context. Failed logins get 401 from echo.
func BasicAuth(svc service.EmployeeService) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "ems",
		Validator: func(username, password string, c echo.Context) (bool, error) {
			ctx := c.Request().Context()
			s, err := svc.Authenticate(ctx, username, password)
			if err != nil {
				return false, err
			}
			if s == nil {
				logger.WarnLog(ctx, "Rejected login for %q", username)
				return false, nil
			}

			ctx = logger.WithLogger(ctx, map[string]interface{}{
				"role":  string(s.Role),
				"empid": s.ID,
			})
			c.SetRequest(c.Request().WithContext(WithSession(ctx, s)))
			return true, nil
		},
	})
}

// RequestID tags each request with a uuid and puts it on the request logger.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := logger.WithLogger(c.Request().Context(), map[string]interface{}{"request_id": id})
			c.SetRequest(c.Request().WithContext(ctx))
		},
	})
}

// RequestLogger writes one structured line per request.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error != nil {
				logger.ErrorLog(ctx, "%s %s -> %d (%v)", v.Method, v.URI, v.Status, v.Latency.Round(time.Microsecond))
				return nil
			}
			logger.InfoLog(ctx, "%s %s -> %d (%v)", v.Method, v.URI, v.Status, v.Latency.Round(time.Microsecond))
			return nil
		},
	})
}
