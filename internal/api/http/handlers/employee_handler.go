package handlers

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/employee-service/internal/api/dto"
	"github.com/spec-kit/employee-service/internal/domain"
	"github.com/spec-kit/employee-service/internal/export"
	"github.com/spec-kit/employee-service/internal/observability"
	"github.com/spec-kit/employee-service/internal/pagination"
	"github.com/spec-kit/employee-service/internal/service"
	apperrors "github.com/spec-kit/employee-service/pkg/util/errorutil"
)

// EmployeeService is the subset of employee workflows the HTTP layer needs.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, input service.EmployeeInput) (*domain.Employee, error)
	GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error)
	ListEmployees(ctx context.Context, opts service.EmployeeListOptions) (*pagination.Result[domain.Employee], error)
	ListEmployeesByDepartment(ctx context.Context, departmentID int64, opts service.EmployeeListOptions) (*pagination.Result[domain.Employee], error)
	ListEmployeesForExport(ctx context.Context, departmentID *int64) ([]domain.Employee, error)
	UpdateEmployee(ctx context.Context, id int64, patch service.EmployeePatch) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error
	GetEmployeeStatistics(ctx context.Context) (*domain.EmployeeStatistics, error)
}

// Exporter renders employees to a file.
type Exporter interface {
	ExportEmployees(employees []domain.Employee, opts export.Options) (string, error)
}

// CleanupScheduler deletes served export files later.
type CleanupScheduler interface {
	Schedule(path string)
}

// EmployeesHandler exposes employee endpoints.
type EmployeesHandler struct {
	service  EmployeeService
	exporter Exporter
	cleaner  CleanupScheduler
	metrics  *observability.Metrics
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(svc EmployeeService, exporter Exporter, cleaner CleanupScheduler, metrics *observability.Metrics) *EmployeesHandler {
	return &EmployeesHandler{service: svc, exporter: exporter, cleaner: cleaner, metrics: metrics}
}

// Create POST /api/employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	emp, err := h.service.CreateEmployee(c.UserContext(), service.EmployeeInput{
		Name:         req.Name,
		Email:        req.Email,
		DepartmentID: req.DepartmentID,
		Salary:       *req.Salary,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Employee created successfully",
		"data":    dto.NewEmployeeResponse(emp),
	})
}

// List GET /api/employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	deptID, err := parseOptionalID(c, "department_id")
	if err != nil {
		return err
	}
	opts, err := listOptions(c)
	if err != nil {
		return err
	}
	opts.DepartmentID = deptID
	result, err := h.service.ListEmployees(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       dto.NewEmployeeResponses(result.Data),
		"pagination": result.Pagination,
	})
}

// ListByDepartment GET /api/employees/department/:departmentId.
func (h *EmployeesHandler) ListByDepartment(c *fiber.Ctx) error {
	deptID, err := parseID(c, "departmentId")
	if err != nil {
		return err
	}
	opts, err := listOptions(c)
	if err != nil {
		return err
	}
	result, err := h.service.ListEmployeesByDepartment(c.UserContext(), deptID, opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       dto.NewEmployeeResponses(result.Data),
		"pagination": result.Pagination,
	})
}

// Get GET /api/employees/:id.
func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	emp, err := h.service.GetEmployeeByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(emp)})
}

// Update PUT /api/employees/:id.
func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	emp, err := h.service.UpdateEmployee(c.UserContext(), id, service.EmployeePatch{
		Name:         req.Name,
		Email:        req.Email,
		DepartmentID: req.DepartmentID,
		Salary:       req.Salary,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Employee updated successfully",
		"data":    dto.NewEmployeeResponse(emp),
	})
}

// Delete DELETE /api/employees/:id.
func (h *EmployeesHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteEmployee(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Employee deleted successfully"})
}

// Statistics GET /api/employees/statistics.
func (h *EmployeesHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.GetEmployeeStatistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Export GET /api/employees/export?format=csv|pdf.
func (h *EmployeesHandler) Export(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format", string(export.FormatCSV)))
	if err != nil {
		return err
	}
	deptID, err := parseOptionalID(c, "department_id")
	if err != nil {
		return err
	}

	employees, err := h.service.ListEmployeesForExport(c.UserContext(), deptID)
	if err != nil {
		return err
	}
	if len(employees) == 0 {
		return apperrors.NewDomainError("NOT_FOUND", "no employees found to export", http.StatusNotFound, nil)
	}

	path, err := h.exporter.ExportEmployees(employees, export.Options{Format: format, DepartmentID: deptID})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if h.cleaner != nil {
		defer h.cleaner.Schedule(path)
	}

	if err := c.Download(path, filepath.Base(path)); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, export.ContentType(format))
	h.metrics.RecordExport(string(format))
	return nil
}

func listOptions(c *fiber.Ctx) (service.EmployeeListOptions, error) {
	page, limit, err := parsePage(c)
	if err != nil {
		return service.EmployeeListOptions{}, err
	}
	return service.EmployeeListOptions{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	}, nil
}
