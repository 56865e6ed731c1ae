package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/locvowork/employee_management_sample/ems/internal/database"
	"github.com/locvowork/employee_management_sample/ems/internal/handler"
	"github.com/locvowork/employee_management_sample/ems/internal/report"
	"github.com/locvowork/employee_management_sample/ems/internal/service"
	"github.com/locvowork/employee_management_sample/ems/internal/service/serviceutils"
	"github.com/locvowork/employee_management_sample/ems/internal/testutil"
)

type fixture struct {
	e     *echo.Echo
	p     *database.Provider
	ada   int
	grace int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, p := testutil.NewRepository(t)
	ctx := context.Background()

	ada, err := repo.InsertEmployee(ctx, testutil.Employee("Ada", "Lovelace", 60000))
	require.NoError(t, err)
	grace, err := repo.InsertEmployee(ctx, testutil.Employee("Grace", "Hopper", 48000))
	require.NoError(t, err)
	testutil.InsertPayroll(t, p, ada, "2025-01-28", "5000.00", "600.00")
	testutil.InsertPayroll(t, p, grace, "2025-01-28", "4000.00", "400.00")

	e := echo.New()
	e.Use(handler.RequestID())
	handler.RegisterRoutes(e, service.NewEmployeeService(repo), report.NewReports(nil))
	return &fixture{e: e, p: p, ada: ada, grace: grace}
}

type credentials struct{ user, pass string }

var adminCreds = credentials{"admin", "admin123"}

func (f *fixture) employeeCreds() credentials {
	return credentials{"Ada_Lovelace", strconv.Itoa(f.ada)}
}

func (f *fixture) do(t *testing.T, creds *credentials, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if creds != nil {
		req.SetBasicAuth(creds.user, creds.pass)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	serviceutils.Response
	Data json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, nil, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, &credentials{"admin", "wrong"}, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, &adminCreds, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"session":{"role":"admin","id":0}}`, string(decode(t, rec).Data))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	creds := f.employeeCreds()
	rec = f.do(t, &creds, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Session  struct{ Role string } `json:"session"`
		Employee struct {
			ID        int    `json:"id"`
			FirstName string `json:"first_name"`
		} `json:"employee"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &me))
	assert.Equal(t, "employee", me.Session.Role)
	assert.Equal(t, f.ada, me.Employee.ID)
	assert.Equal(t, "Ada", me.Employee.FirstName)
}

func TestEmployeeRoleIsRestricted(t *testing.T) {
	f := newFixture(t)
	creds := f.employeeCreds()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"own record", http.MethodGet, "/employees/" + strconv.Itoa(f.ada), "", http.StatusOK},
		{"own history", http.MethodGet, "/reports/pay-history/" + strconv.Itoa(f.ada), "", http.StatusOK},
		{"other record", http.MethodGet, "/employees/" + strconv.Itoa(f.grace), "", http.StatusForbidden},
		{"other history", http.MethodGet, "/reports/pay-history/" + strconv.Itoa(f.grace), "", http.StatusForbidden},
		{"all history", http.MethodGet, "/reports/pay-history/0", "", http.StatusForbidden},
		{"search", http.MethodGet, "/employees/search?name=a", "", http.StatusForbidden},
		{"own salary", http.MethodPatch, "/employees/" + strconv.Itoa(f.ada) + "/fields/salary", `{"value":"1000000"}`, http.StatusForbidden},
		{"own email", http.MethodPatch, "/employees/" + strconv.Itoa(f.ada) + "/fields/email", `{"value":"ada@home.example"}`, http.StatusOK},
		{"own blank last name", http.MethodPatch, "/employees/" + strconv.Itoa(f.ada) + "/fields/last_name", `{"value":" "}`, http.StatusBadRequest},
		{"own address", http.MethodPut, "/employees/" + strconv.Itoa(f.ada) + "/address", `{"street":"12 Engine Row","city_id":1,"state_id":1}`, http.StatusOK},
		{"other email", http.MethodPatch, "/employees/" + strconv.Itoa(f.grace) + "/fields/email", `{"value":"x@example.com"}`, http.StatusForbidden},
		{"other address", http.MethodPut, "/employees/" + strconv.Itoa(f.grace) + "/address", `{"street":"1 Loop","city_id":1,"state_id":1}`, http.StatusForbidden},
		{"delete", http.MethodDelete, "/employees/" + strconv.Itoa(f.ada), "", http.StatusForbidden},
		{"reference", http.MethodGet, "/reference/cities", "", http.StatusForbidden},
		{"totals", http.MethodGet, "/reports/total-pay/division?year=2025&month=1", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, &creds, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestEmployeeUpdatesOwnContactDetails(t *testing.T) {
	f := newFixture(t)
	creds := f.employeeCreds()
	path := "/employees/" + strconv.Itoa(f.ada)

	rec := f.do(t, &creds, http.MethodPatch, path+"/fields/phone", `{"value":"555-0142"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(t, &creds, http.MethodPatch, path+"/fields/salary", `{"value":"1"}`)
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = f.do(t, &creds, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phone":"555-0142"`)
	assert.NotContains(t, rec.Body.String(), `"salary":"1"`)
}

func TestEmployeeCRUD(t *testing.T) {
	f := newFixture(t)

	body := `{"first_name":"Alan","last_name":"Turing","ssn":"555-55-5555","dob":"1912-06-23",
		"salary":"72000","job_title_id":5,"division_id":1,
		"address":{"street":"1 Bletchley Park","city_id":2,"state_id":2,"zip":"02110"}}`
	rec := f.do(t, &adminCreds, http.MethodPost, "/employees", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct{ ID int }
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	require.Greater(t, created.ID, f.grace)
	id := strconv.Itoa(created.ID)

	rec = f.do(t, &adminCreds, http.MethodGet, "/employees/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"job_title":"Data Analyst"`)

	rec = f.do(t, &adminCreds, http.MethodPatch, "/employees/"+id+"/fields/email", `{"value":"alan@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, &adminCreds, http.MethodPatch, "/employees/"+id+"/fields/ssn_hash", `{"value":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode(t, rec).Success)

	rec = f.do(t, &adminCreds, http.MethodPatch, "/employees/"+id+"/fields/email", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, &adminCreds, http.MethodPut, "/employees/"+id+"/address", `{"street":"2 Hut","city_id":3,"state_id":3}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, &adminCreds, http.MethodPut, "/employees/"+id+"/job-title", `{"job_title_id":99}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, &adminCreds, http.MethodPut, "/employees/"+id+"/division", `{"division_id":3}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, &adminCreds, http.MethodGet, "/employees/search?ssn=555-55-5555", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"alan@example.com"`)
	assert.Contains(t, rec.Body.String(), `"division_name":"Human Resources"`)

	rec = f.do(t, &adminCreds, http.MethodGet, "/employees/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, &adminCreds, http.MethodDelete, "/employees/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, &adminCreds, http.MethodDelete, "/employees/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, &adminCreds, http.MethodGet, "/employees/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, &adminCreds, http.MethodGet, "/employees/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjustSalaries(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, &adminCreds, http.MethodPost, "/salaries/adjust", `{"min":"50000","max":"70000","percent":"10"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"updated":1}`, string(decode(t, rec).Data))

	rec = f.do(t, &adminCreds, http.MethodPost, "/salaries/adjust", `{"min":"10","max":"5","percent":"10"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReports(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, &adminCreds, http.MethodGet, "/reports/total-pay/job-title?year=2025&month=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var totals []struct {
		Name     string `json:"name"`
		GrossPay string `json:"gross_pay"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &totals))
	require.Len(t, totals, 1)
	assert.Equal(t, "Software Engineer", totals[0].Name)
	assert.Equal(t, "9000", totals[0].GrossPay)

	rec = f.do(t, &adminCreds, http.MethodGet, "/reports/total-pay/division?year=2025&month=13", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, &adminCreds, http.MethodGet, "/reports/total-pay/city?year=2025&month=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, &adminCreds, http.MethodGet, "/reports/total-pay/division?month=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, &adminCreds, http.MethodGet, "/reports/total-pay/division/export?year=2025&month=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, report.ContentTypeXLSX, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "total-pay-division-2025-01.xlsx")
	wb, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	title, err := wb.GetCellValue("Total Pay", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Total pay by Division, January 2025", title)

	rec = f.do(t, &adminCreds, http.MethodGet, "/reports/total-pay/division/export?year=2025&month=1&format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Technology Engineering,9000.00,8000.00")

	rec = f.do(t, &adminCreds, http.MethodGet, "/reports/pay-history/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []json.RawMessage
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &history))
	assert.Len(t, history, 2)

	creds := f.employeeCreds()
	rec = f.do(t, &creds, http.MethodGet, "/reports/pay-history/"+strconv.Itoa(f.ada)+"?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")
	assert.NotContains(t, rec.Body.String(), "Grace Hopper")

	rec = f.do(t, &adminCreds, http.MethodGet, "/reports/pay-history/0?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReferenceRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, &adminCreds, http.MethodGet, "/reference/cities", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `{"id":1,"name":"Atlanta"}`)

	rec = f.do(t, &adminCreds, http.MethodGet, "/reference/job-titles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"1":"Software Engineer"`)

	rec = f.do(t, &adminCreds, http.MethodGet, "/reference", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"states":[`)
}

func TestStoreFailureIs500(t *testing.T) {
	f := newFixture(t)
	creds := f.employeeCreds()

	require.NoError(t, f.p.Close())
	rec := f.do(t, &adminCreds, http.MethodGet, "/employees/search?name=a", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode(t, rec).Error)

	// employee logins need the store
	rec = f.do(t, &creds, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
