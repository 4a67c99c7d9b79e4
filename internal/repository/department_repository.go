package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/employee-service/internal/domain"
)

// DepartmentFilter captures department search parameters.
type DepartmentFilter struct {
	NameContains *string
	Limit        int
	Offset       int
}

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context, filter DepartmentFilter) ([]domain.Department, error)
	Count(ctx context.Context, filter DepartmentFilter) (int, error)
}

type departmentRepository struct {
	db DBTX
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(db DBTX) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name)
        VALUES ($1)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query, dept.Name).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET name=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query, dept.Name, dept.ID).Scan(&dept.UpdatedAt)
}

func (r *departmentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	const query = `
        SELECT id, name, created_at, updated_at
        FROM departments WHERE id=$1`
	var dept domain.Department
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context, filter DepartmentFilter) ([]domain.Department, error) {
	where, args := departmentWhere(filter)
	query := fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM departments WHERE %s ORDER BY name ASC, id ASC`, where)
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

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) Count(ctx context.Context, filter DepartmentFilter) (int, error) {
	where, args := departmentWhere(filter)
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM departments WHERE `+where, args...).Scan(&total)
	return total, err
}

func departmentWhere(filter DepartmentFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if hasTerm(filter.NameContains) {
		args = append(args, containsPattern(*filter.NameContains))
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}
