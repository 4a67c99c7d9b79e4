package domain

import "time"

// Employee belongs to exactly one department.
type Employee struct {
	ID           int64
	Name         string
	Email        string
	DepartmentID int64
	Salary       float64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Department is populated only when the related row was requested.
	Department *Department
}

// DepartmentName returns the joined department name, or an empty string when it was not loaded.
func (e Employee) DepartmentName() string {
	if e.Department == nil {
		return ""
	}
	return e.Department.Name
}
