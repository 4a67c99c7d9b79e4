package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/employee-service/internal/domain"
)

// EmployeeFilter captures employee search parameters.
// NameContains and EmailContains are OR-combined when both are set.
type EmployeeFilter struct {
	NameContains  *string
	EmailContains *string
	DepartmentID  *int64
	Limit         int
	Offset        int
}

// EmployeeRepository encapsulates employee persistence and aggregates.
type EmployeeRepository interface {
	Create(ctx context.Context, emp *domain.Employee) error
	Update(ctx context.Context, emp *domain.Employee) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
	Count(ctx context.Context, filter EmployeeFilter) (int, error)
	AverageSalary(ctx context.Context) (float64, error)
	CountByDepartment(ctx context.Context) ([]domain.DepartmentCount, error)
}

type employeeRepository struct {
	db DBTX
}

// NewEmployeeRepository instantiates repository.
func NewEmployeeRepository(db DBTX) EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `e.id, e.name, e.email, e.department_id, e.salary::float8, e.created_at, e.updated_at,
               COALESCE(d.name, '')`

const employeeFrom = `FROM employees e LEFT JOIN departments d ON d.id = e.department_id`

func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	const query = `
        INSERT INTO employees (name, email, department_id, salary)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		emp.Name,
		emp.Email,
		emp.DepartmentID,
		emp.Salary,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
}

func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	const query = `
        UPDATE employees SET name=$1, email=$2, department_id=$3, salary=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		emp.Name,
		emp.Email,
		emp.DepartmentID,
		emp.Salary,
		emp.ID,
	).Scan(&emp.UpdatedAt)
}

func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` ` + employeeFrom + ` WHERE e.id=$1`
	emp, err := scanEmployee(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	where, args := employeeWhere(filter)
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY e.name ASC, e.id ASC`, employeeColumns, employeeFrom, where)
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *emp)
	}
	return result, rows.Err()
}

func (r *employeeRepository) Count(ctx context.Context, filter EmployeeFilter) (int, error) {
	where, args := employeeWhere(filter)
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM employees e WHERE `+where, args...).Scan(&total)
	return total, err
}

func (r *employeeRepository) AverageSalary(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(AVG(salary), 0)::float8 FROM employees`).Scan(&avg)
	return avg, err
}

// CountByDepartment groups employees per department; departments without employees are omitted.
func (r *employeeRepository) CountByDepartment(ctx context.Context) ([]domain.DepartmentCount, error) {
	const query = `
        SELECT d.name, COUNT(e.id)
        FROM employees e
        INNER JOIN departments d ON d.id = e.department_id
        GROUP BY d.id, d.name
        ORDER BY d.name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.DepartmentCount{}
	for rows.Next() {
		var dc domain.DepartmentCount
		if err := rows.Scan(&dc.DepartmentName, &dc.Count); err != nil {
			return nil, err
		}
		result = append(result, dc)
	}
	return result, rows.Err()
}

func employeeWhere(filter EmployeeFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("e.department_id=$%d", len(args)))
	}

	var search []string
	if hasTerm(filter.NameContains) {
		args = append(args, containsPattern(*filter.NameContains))
		search = append(search, fmt.Sprintf("e.name ILIKE $%d", len(args)))
	}
	if hasTerm(filter.EmailContains) {
		args = append(args, containsPattern(*filter.EmailContains))
		search = append(search, fmt.Sprintf("e.email ILIKE $%d", len(args)))
	}
	if len(search) > 0 {
		clauses = append(clauses, "("+strings.Join(search, " OR ")+")")
	}

	return strings.Join(clauses, " AND "), args
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var (
		emp      domain.Employee
		deptName string
	)
	if err := row.Scan(
		&emp.ID,
		&emp.Name,
		&emp.Email,
		&emp.DepartmentID,
		&emp.Salary,
		&emp.CreatedAt,
		&emp.UpdatedAt,
		&deptName,
	); err != nil {
		return nil, err
	}
	if deptName != "" {
		emp.Department = &domain.Department{ID: emp.DepartmentID, Name: deptName}
	}
	return &emp, nil
}
