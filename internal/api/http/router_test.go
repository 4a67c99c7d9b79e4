package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/employee-service/internal/api/http/handlers"
	"github.com/spec-kit/employee-service/internal/config"
	"github.com/spec-kit/employee-service/internal/domain"
	"github.com/spec-kit/employee-service/internal/export"
	"github.com/spec-kit/employee-service/internal/observability"
	"github.com/spec-kit/employee-service/internal/pagination"
	"github.com/spec-kit/employee-service/internal/service"
	apperrors "github.com/spec-kit/employee-service/pkg/util/errorutil"
)

type stubDepartments struct {
	deleteErr error
}

func (s *stubDepartments) CreateDepartment(_ context.Context, name string) (*domain.Department, error) {
	return &domain.Department{ID: 1, Name: name}, nil
}

func (s *stubDepartments) GetDepartmentByID(_ context.Context, id int64) (*domain.Department, error) {
	if id != 1 {
		return nil, apperrors.NewNotFound("department", map[string]any{"id": id})
	}
	return &domain.Department{ID: 1, Name: "Engineering"}, nil
}

func (s *stubDepartments) ListDepartments(_ context.Context, opts service.DepartmentListOptions) (*pagination.Result[domain.Department], error) {
	page, limit := pagination.ValidateParams(opts.Page, opts.Limit)
	result := pagination.NewResult([]domain.Department{{ID: 1, Name: "Engineering"}}, page, limit, 1)
	return &result, nil
}

func (s *stubDepartments) UpdateDepartment(_ context.Context, id int64, patch service.DepartmentPatch) (*domain.Department, error) {
	return &domain.Department{ID: id, Name: *patch.Name}, nil
}

func (s *stubDepartments) DeleteDepartment(context.Context, int64) error {
	return s.deleteErr
}

func (s *stubDepartments) GetDepartmentWithEmployees(_ context.Context, id int64) (*domain.Department, []domain.Employee, error) {
	return &domain.Department{ID: id, Name: "Engineering"}, nil, nil
}

type stubEmployees struct {
	employees []domain.Employee
	lastList  service.EmployeeListOptions
	created   *service.EmployeeInput
}

func (s *stubEmployees) CreateEmployee(_ context.Context, input service.EmployeeInput) (*domain.Employee, error) {
	s.created = &input
	return &domain.Employee{
		ID: 10, Name: input.Name, Email: input.Email, DepartmentID: input.DepartmentID, Salary: input.Salary,
		Department: &domain.Department{ID: input.DepartmentID, Name: "Engineering"},
	}, nil
}

func (s *stubEmployees) GetEmployeeByID(_ context.Context, id int64) (*domain.Employee, error) {
	return nil, apperrors.NewNotFound("employee", map[string]any{"id": id})
}

func (s *stubEmployees) ListEmployees(_ context.Context, opts service.EmployeeListOptions) (*pagination.Result[domain.Employee], error) {
	s.lastList = opts
	page, limit := pagination.ValidateParams(opts.Page, opts.Limit)
	result := pagination.NewResult(s.employees, page, limit, 25)
	return &result, nil
}

func (s *stubEmployees) ListEmployeesByDepartment(ctx context.Context, departmentID int64, opts service.EmployeeListOptions) (*pagination.Result[domain.Employee], error) {
	opts.DepartmentID = &departmentID
	return s.ListEmployees(ctx, opts)
}

func (s *stubEmployees) ListEmployeesForExport(context.Context, *int64) ([]domain.Employee, error) {
	return s.employees, nil
}

func (s *stubEmployees) UpdateEmployee(context.Context, int64, service.EmployeePatch) (*domain.Employee, error) {
	return nil, apperrors.NewConflict("employee with this email already exists", nil)
}

func (s *stubEmployees) DeleteEmployee(context.Context, int64) error {
	return nil
}

func (s *stubEmployees) GetEmployeeStatistics(context.Context) (*domain.EmployeeStatistics, error) {
	return &domain.EmployeeStatistics{
		TotalEmployees:   2,
		AverageSalary:    77500,
		DepartmentCounts: []domain.DepartmentCount{{DepartmentName: "Engineering", Count: 2}},
	}, nil
}

type recordingCleaner struct {
	paths []string
}

func (r *recordingCleaner) Schedule(path string) {
	r.paths = append(r.paths, path)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testApp struct {
	app         *fiber.App
	departments *stubDepartments
	employees   *stubEmployees
	cleaner     *recordingCleaner
	metrics     *observability.Metrics
	exportDir   string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		departments: &stubDepartments{},
		employees:   &stubEmployees{},
		cleaner:     &recordingCleaner{},
		metrics:     observability.NewMetrics(),
		exportDir:   t.TempDir(),
	}
	logger := zap.NewNop()
	ta.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterMiddlewares(ta.app, logger, ta.metrics, MiddlewareConfig{
		Timeout: time.Second,
		HTTP:    config.HTTPConfig{CORSAllowOrigins: []string{"http://localhost:3000"}},
	})
	RegisterRoutes(ta.app, RouteConfig{
		Health:      handlers.NewHealthHandler("employee-service", "test", ta.metrics, handlers.Dependency{Name: "postgres", Pinger: failingPinger{}}),
		Departments: handlers.NewDepartmentsHandler(ta.departments),
		Employees:   handlers.NewEmployeesHandler(ta.employees, export.New(ta.exportDir), ta.cleaner, ta.metrics),
	})
	return ta
}

func (ta *testApp) do(t *testing.T, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestRoutesRejectNonNumericIDs(t *testing.T) {
	ta := newTestApp(t)

	for _, target := range []string{"/api/departments/abc", "/api/employees/xyz", "/api/employees/department/none", "/api/departments/0"} {
		status, body := ta.do(t, fiber.MethodGet, target, "")
		assert.Equal(t, fiber.StatusBadRequest, status, target)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body), target)
	}
}

func TestCreateEmployeeValidation(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, fiber.MethodPost, "/api/employees", `{"name":"J","email":"nope","department_id":1,"salary":-5}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "salary")
	assert.Nil(t, ta.employees.created)

	status, _ = ta.do(t, fiber.MethodPost, "/api/employees", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreateEmployee(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, fiber.MethodPost, "/api/employees", `{"name":" John Doe ","email":"John@Example.com","department_id":1,"salary":0}`)
	require.Equal(t, fiber.StatusCreated, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "John Doe", data["name"])
	assert.Equal(t, "john@example.com", data["email"])
	assert.Equal(t, "Engineering", data["department"].(map[string]any)["name"])
	require.NotNil(t, ta.employees.created)
	assert.Equal(t, 0.0, ta.employees.created.Salary)
}

func TestDomainErrorsRenderEnvelope(t *testing.T) {
	ta := newTestApp(t)
	ta.departments.deleteErr = apperrors.NewReferentialViolation("cannot delete department with associated employees", map[string]any{"employee_count": 3})

	status, body := ta.do(t, fiber.MethodDelete, "/api/departments/1", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "REFERENTIAL_VIOLATION", errorCode(body))

	status, body = ta.do(t, fiber.MethodPut, "/api/employees/4", `{"email":"jane@example.com"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, body = ta.do(t, fiber.MethodGet, "/api/employees/4", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = ta.do(t, fiber.MethodGet, "/api/nowhere", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestListEmployeesPagination(t *testing.T) {
	ta := newTestApp(t)
	ta.employees.employees = []domain.Employee{{ID: 1, Name: "John Doe"}}

	status, body := ta.do(t, fiber.MethodGet, "/api/employees?page=2&limit=150&search=jo&department_id=3", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "jo", ta.employees.lastList.Search)
	require.NotNil(t, ta.employees.lastList.DepartmentID)
	assert.Equal(t, int64(3), *ta.employees.lastList.DepartmentID)

	meta := body["pagination"].(map[string]any)
	assert.Equal(t, 2.0, meta["current_page"])
	assert.Equal(t, 10.0, meta["items_per_page"])
	assert.Equal(t, 3.0, meta["total_pages"])
	assert.Equal(t, true, meta["has_next_page"])
	assert.Equal(t, true, meta["has_previous_page"])

	status, body = ta.do(t, fiber.MethodGet, "/api/employees?department_id=abc", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestListRejectsNonNumericPaging(t *testing.T) {
	ta := newTestApp(t)

	for _, target := range []string{
		"/api/employees?page=abc",
		"/api/employees?limit=-1",
		"/api/employees?page=1.5",
		"/api/departments?limit=ten",
		"/api/employees/department/1?page=x",
	} {
		status, body := ta.do(t, fiber.MethodGet, target, "")
		assert.Equal(t, fiber.StatusBadRequest, status, target)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body), target)
	}

	status, body := ta.do(t, fiber.MethodGet, "/api/departments?page=0&limit=0", "")
	require.Equal(t, fiber.StatusOK, status)
	meta := body["pagination"].(map[string]any)
	assert.Equal(t, 1.0, meta["current_page"])
	assert.Equal(t, 10.0, meta["items_per_page"])
}

func TestStatisticsRouteIsNotAnID(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, fiber.MethodGet, "/api/employees/statistics", "")
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, 77500.0, data["average_salary"])
	assert.Equal(t, 2.0, data["total_employees"])
}

func TestExportEmployees(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, fiber.MethodGet, "/api/employees/export?format=xlsx", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "UNSUPPORTED_FORMAT", errorCode(body))

	status, body = ta.do(t, fiber.MethodGet, "/api/employees/export?format=csv", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
	assert.Empty(t, ta.cleaner.paths)

	ta.employees.employees = []domain.Employee{{
		ID: 1, Name: "John Doe", Email: "john@example.com", Salary: 75000,
		Department: &domain.Department{ID: 1, Name: "Eng"},
	}}
	req := httptest.NewRequest(fiber.MethodGet, "/api/employees/export?format=csv", nil)
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/csv"))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")

	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(content), "John Doe,john@example.com,75000.00,Eng")

	require.Len(t, ta.cleaner.paths, 1)
	_, err = os.Stat(ta.cleaner.paths[0])
	assert.NoError(t, err)
	assert.Equal(t, int64(1), ta.metrics.Snapshot().Exports["csv"])
}

func TestHealthEndpoints(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, fiber.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = ta.do(t, fiber.MethodGet, "/health/ready", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errorCode(body))

	status, body = ta.do(t, fiber.MethodGet, "/metrics", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "data")
}
