package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/employee-service/internal/domain"
)

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// Normalize trims surrounding whitespace.
func (r *CreateDepartmentRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// UpdateDepartmentRequest payload; absent fields are left unchanged.
type UpdateDepartmentRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=100"`
}

// Normalize trims surrounding whitespace.
func (r *UpdateDepartmentRequest) Normalize() {
	trimPtr(r.Name)
}

// DepartmentResponse represents a department.
type DepartmentResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DepartmentWithEmployeesResponse embeds the department's employees.
type DepartmentWithEmployeesResponse struct {
	DepartmentResponse
	Employees []EmployeeResponse `json:"employees"`
}

// NewDepartmentResponse maps a domain department.
func NewDepartmentResponse(d *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// NewDepartmentResponses maps a list, never returning nil.
func NewDepartmentResponses(list []domain.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(list))
	for i := range list {
		out = append(out, NewDepartmentResponse(&list[i]))
	}
	return out
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
