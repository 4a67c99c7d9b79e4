package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/employee-service/internal/api/dto"
	"github.com/spec-kit/employee-service/internal/domain"
	"github.com/spec-kit/employee-service/internal/pagination"
	"github.com/spec-kit/employee-service/internal/service"
)

// DepartmentService is the subset of department workflows the HTTP layer needs.
type DepartmentService interface {
	CreateDepartment(ctx context.Context, name string) (*domain.Department, error)
	GetDepartmentByID(ctx context.Context, id int64) (*domain.Department, error)
	ListDepartments(ctx context.Context, opts service.DepartmentListOptions) (*pagination.Result[domain.Department], error)
	UpdateDepartment(ctx context.Context, id int64, patch service.DepartmentPatch) (*domain.Department, error)
	DeleteDepartment(ctx context.Context, id int64) error
	GetDepartmentWithEmployees(ctx context.Context, id int64) (*domain.Department, []domain.Employee, error)
}

// DepartmentsHandler exposes department endpoints.
type DepartmentsHandler struct {
	service DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(svc DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{service: svc}
}

// Create POST /api/departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	dept, err := h.service.CreateDepartment(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Department created successfully",
		"data":    dto.NewDepartmentResponse(dept),
	})
}

// List GET /api/departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	page, limit, err := parsePage(c)
	if err != nil {
		return err
	}
	result, err := h.service.ListDepartments(c.UserContext(), service.DepartmentListOptions{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       dto.NewDepartmentResponses(result.Data),
		"pagination": result.Pagination,
	})
}

// Get GET /api/departments/:id.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	dept, err := h.service.GetDepartmentByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// Update PUT /api/departments/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateDepartmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	dept, err := h.service.UpdateDepartment(c.UserContext(), id, service.DepartmentPatch{Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Department updated successfully",
		"data":    dto.NewDepartmentResponse(dept),
	})
}

// Delete DELETE /api/departments/:id.
func (h *DepartmentsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteDepartment(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Department deleted successfully"})
}

// Employees GET /api/departments/:id/employees.
func (h *DepartmentsHandler) Employees(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	dept, employees, err := h.service.GetDepartmentWithEmployees(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DepartmentWithEmployeesResponse{
		DepartmentResponse: dto.NewDepartmentResponse(dept),
		Employees:          dto.NewEmployeeResponses(employees),
	}})
}
