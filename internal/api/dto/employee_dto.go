package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/employee-service/internal/domain"
)

// CreateEmployeeRequest payload.
type CreateEmployeeRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=100"`
	Email        string   `json:"email" validate:"required,email,max=255"`
	DepartmentID int64    `json:"department_id" validate:"required,gt=0"`
	Salary       *float64 `json:"salary" validate:"required,gte=0,lte=99999999.99"`
}

// Normalize trims whitespace and lower-cases the email.
func (r *CreateEmployeeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// UpdateEmployeeRequest payload; absent fields are left unchanged.
type UpdateEmployeeRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Email        *string  `json:"email" validate:"omitempty,email,max=255"`
	DepartmentID *int64   `json:"department_id" validate:"omitempty,gt=0"`
	Salary       *float64 `json:"salary" validate:"omitempty,gte=0,lte=99999999.99"`
}

// Normalize trims whitespace and lower-cases the email.
func (r *UpdateEmployeeRequest) Normalize() {
	trimPtr(r.Name)
	if r.Email != nil {
		*r.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
}

// DepartmentSummary is the department embedded in employee responses.
type DepartmentSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EmployeeResponse represents an employee.
type EmployeeResponse struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	DepartmentID int64              `json:"department_id"`
	Salary       float64            `json:"salary"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Department   *DepartmentSummary `json:"department,omitempty"`
}

// NewEmployeeResponse maps a domain employee.
func NewEmployeeResponse(e *domain.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		DepartmentID: e.DepartmentID,
		Salary:       e.Salary,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.Department != nil {
		resp.Department = &DepartmentSummary{ID: e.Department.ID, Name: e.Department.Name}
	}
	return resp
}

// NewEmployeeResponses maps a list, never returning nil.
func NewEmployeeResponses(list []domain.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(list))
	for i := range list {
		out = append(out, NewEmployeeResponse(&list[i]))
	}
	return out
}
