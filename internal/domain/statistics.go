package domain

// DepartmentCount is the number of employees in a single department.
type DepartmentCount struct {
	DepartmentName string `json:"department_name"`
	Count          int    `json:"count"`
}

// EmployeeStatistics aggregates the employee table.
type EmployeeStatistics struct {
	TotalEmployees   int               `json:"total_employees"`
	AverageSalary    float64           `json:"average_salary"`
	DepartmentCounts []DepartmentCount `json:"department_counts"`
}
