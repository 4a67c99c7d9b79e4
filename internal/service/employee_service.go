package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/employee-service/internal/domain"
	"github.com/spec-kit/employee-service/internal/events"
	"github.com/spec-kit/employee-service/internal/pagination"
	"github.com/spec-kit/employee-service/internal/repository"
	apperrors "github.com/spec-kit/employee-service/pkg/util/errorutil"
)

// StatisticsCache stores the result of GetEmployeeStatistics between writes.
type StatisticsCache interface {
	Get(ctx context.Context) (*domain.EmployeeStatistics, bool, error)
	Set(ctx context.Context, stats *domain.EmployeeStatistics) error
	Invalidate(ctx context.Context) error
}

// EmployeeService coordinates employee workflows.
type EmployeeService struct {
	employees   repository.EmployeeRepository
	departments repository.DepartmentRepository
	cache       StatisticsCache
	events      publisher
	logger      *zap.Logger
}

// EmployeeDependencies bundles collaborators for the employee service.
type EmployeeDependencies struct {
	EmployeeRepo   repository.EmployeeRepository
	DepartmentRepo repository.DepartmentRepository
	Cache          StatisticsCache
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// EmployeeInput describes employee creation payload.
type EmployeeInput struct {
	Name         string
	Email        string
	DepartmentID int64
	Salary       float64
}

// EmployeePatch holds the fields an update may change.
type EmployeePatch struct {
	Name         *string
	Email        *string
	DepartmentID *int64
	Salary       *float64
}

// EmployeeListOptions define listing parameters. Search matches name or email.
type EmployeeListOptions struct {
	Page         int
	Limit        int
	Search       string
	DepartmentID *int64
}

// NewEmployeeService constructs the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	logger := loggerOrNop(deps.Logger)
	return &EmployeeService{
		employees:   deps.EmployeeRepo,
		departments: deps.DepartmentRepo,
		cache:       deps.Cache,
		events:      publisher{dispatcher: deps.Dispatcher, logger: logger},
		logger:      logger,
	}
}

// CreateEmployee validates the department reference and inserts the employee.
func (s *EmployeeService) CreateEmployee(ctx context.Context, input EmployeeInput) (*domain.Employee, error) {
	s.logger.Info("creating employee",
		zap.String("email", input.Email),
		zap.Int64("department_id", input.DepartmentID))

	dept, err := s.requireDepartment(ctx, input.DepartmentID)
	if err != nil {
		return nil, err
	}

	emp := &domain.Employee{
		Name:         input.Name,
		Email:        input.Email,
		DepartmentID: input.DepartmentID,
		Salary:       input.Salary,
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, s.writeError("create", emp, err)
	}
	emp.Department = dept

	s.logger.Info("employee created",
		zap.Int64("employee_id", emp.ID),
		zap.Int64("department_id", emp.DepartmentID))
	s.events.publish(ctx, events.NewEvent(events.EventEmployeeCreated, emp.ID, events.EmployeePayload{
		DepartmentID: emp.DepartmentID,
		Email:        emp.Email,
	}))
	return emp, nil
}

// GetEmployeeByID fetches an employee with its department.
func (s *EmployeeService) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			s.logger.Warn("employee not found", zap.Int64("employee_id", id))
			return nil, apperrors.NewNotFound("employee", map[string]any{"id": id})
		}
		s.logger.Error("fetch employee failed", zap.Int64("employee_id", id), zap.Error(err))
		return nil, apperrors.NewStoreUnavailable("failed to fetch employee", err)
	}
	return emp, nil
}

// ListEmployees returns one page of employees ordered by name.
func (s *EmployeeService) ListEmployees(ctx context.Context, opts EmployeeListOptions) (*pagination.Result[domain.Employee], error) {
	page, limit := pagination.ValidateParams(opts.Page, opts.Limit)
	term := searchTerm(opts.Search)
	filter := repository.EmployeeFilter{
		NameContains:  term,
		EmailContains: term,
		DepartmentID:  opts.DepartmentID,
		Limit:         limit,
		Offset:        pagination.Offset(page, limit),
	}

	total, err := s.employees.Count(ctx, filter)
	if err != nil {
		s.logger.Error("count employees failed", zap.Error(err))
		return nil, apperrors.NewStoreUnavailable("failed to fetch employees", err)
	}
	list, err := s.employees.List(ctx, filter)
	if err != nil {
		s.logger.Error("list employees failed", zap.Error(err))
		return nil, apperrors.NewStoreUnavailable("failed to fetch employees", err)
	}

	result := pagination.NewResult(list, page, limit, total)
	s.logger.Info("employees fetched",
		zap.Int("total", total),
		zap.Int("returned", len(list)),
		zap.Int("page", page),
		zap.Int64p("department_id", opts.DepartmentID))
	return &result, nil
}

// ListEmployeesByDepartment lists employees of an existing department.
func (s *EmployeeService) ListEmployeesByDepartment(ctx context.Context, departmentID int64, opts EmployeeListOptions) (*pagination.Result[domain.Employee], error) {
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("department", map[string]any{"id": departmentID})
		}
		return nil, apperrors.NewStoreUnavailable("failed to fetch department", err)
	}
	opts.DepartmentID = &departmentID
	return s.ListEmployees(ctx, opts)
}

// ListEmployeesForExport returns every employee matching departmentID (all when nil), ordered by name.
func (s *EmployeeService) ListEmployeesForExport(ctx context.Context, departmentID *int64) ([]domain.Employee, error) {
	list, err := s.employees.List(ctx, repository.EmployeeFilter{DepartmentID: departmentID})
	if err != nil {
		s.logger.Error("list employees for export failed", zap.Error(err))
		return nil, apperrors.NewStoreUnavailable("failed to fetch employees", err)
	}
	return list, nil
}

// UpdateEmployee applies patch to the employee with id.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id int64, patch EmployeePatch) (*domain.Employee, error) {
	emp, err := s.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousDept := emp.DepartmentID

	if patch.DepartmentID != nil && *patch.DepartmentID != emp.DepartmentID {
		dept, err := s.requireDepartment(ctx, *patch.DepartmentID)
		if err != nil {
			return nil, err
		}
		emp.DepartmentID = dept.ID
		emp.Department = dept
	}
	if patch.Name != nil {
		emp.Name = *patch.Name
	}
	if patch.Email != nil {
		emp.Email = *patch.Email
	}
	if patch.Salary != nil {
		emp.Salary = *patch.Salary
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		return nil, s.writeError("update", emp, err)
	}

	s.logger.Info("employee updated", zap.Int64("employee_id", id))
	payload := events.EmployeePayload{DepartmentID: emp.DepartmentID, Email: emp.Email}
	if previousDept != emp.DepartmentID {
		payload.PreviousDepartmentID = &previousDept
	}
	s.events.publish(ctx, events.NewEvent(events.EventEmployeeUpdated, emp.ID, payload))
	return emp, nil
}

// DeleteEmployee removes the employee with id.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id int64) error {
	emp, err := s.GetEmployeeByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.employees.Delete(ctx, id); err != nil {
		if isNoRows(err) {
			return apperrors.NewNotFound("employee", map[string]any{"id": id})
		}
		s.logger.Error("delete employee failed", zap.Int64("employee_id", id), zap.Error(err))
		return apperrors.NewStoreUnavailable("failed to delete employee", err)
	}

	s.logger.Info("employee deleted", zap.Int64("employee_id", id))
	s.events.publish(ctx, events.NewEvent(events.EventEmployeeDeleted, id, events.EmployeePayload{DepartmentID: emp.DepartmentID}))
	return nil
}

// GetEmployeeStatistics returns headcount, mean salary and per-department headcount.
// Departments without employees are not listed.
func (s *EmployeeService) GetEmployeeStatistics(ctx context.Context) (*domain.EmployeeStatistics, error) {
	if s.cache != nil {
		stats, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("statistics cache read failed", zap.Error(err))
		} else if ok {
			return stats, nil
		}
	}

	stats, err := s.aggregateStatistics(ctx)
	if err != nil {
		s.logger.Error("fetch employee statistics failed", zap.Error(err))
		return nil, apperrors.NewStoreUnavailable("failed to fetch employee statistics", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.logger.Warn("statistics cache write failed", zap.Error(err))
		}
	}
	s.logger.Info("employee statistics fetched",
		zap.Int("total_employees", stats.TotalEmployees),
		zap.Float64("average_salary", stats.AverageSalary))
	return stats, nil
}

func (s *EmployeeService) aggregateStatistics(ctx context.Context) (*domain.EmployeeStatistics, error) {
	total, err := s.employees.Count(ctx, repository.EmployeeFilter{})
	if err != nil {
		return nil, err
	}
	stats := &domain.EmployeeStatistics{
		TotalEmployees:   total,
		DepartmentCounts: []domain.DepartmentCount{},
	}
	if total == 0 {
		return stats, nil
	}

	if stats.AverageSalary, err = s.employees.AverageSalary(ctx); err != nil {
		return nil, err
	}
	counts, err := s.employees.CountByDepartment(ctx)
	if err != nil {
		return nil, err
	}
	if counts != nil {
		stats.DepartmentCounts = counts
	}
	return stats, nil
}

// requireDepartment loads the department an employee points at; a missing one is a referential violation.
func (s *EmployeeService) requireDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			s.logger.Warn("employee references unknown department", zap.Int64("department_id", id))
			return nil, apperrors.NewReferentialViolation("department not found", map[string]any{"department_id": id})
		}
		return nil, apperrors.NewStoreUnavailable("failed to fetch department", err)
	}
	return dept, nil
}

func (s *EmployeeService) writeError(op string, emp *domain.Employee, err error) error {
	switch {
	case isNoRows(err):
		return apperrors.NewNotFound("employee", map[string]any{"id": emp.ID})
	case isUniqueViolation(err):
		return apperrors.NewConflict("employee with this email already exists", map[string]any{"email": emp.Email})
	case isForeignKeyViolation(err):
		return apperrors.NewReferentialViolation("invalid department reference", map[string]any{"department_id": emp.DepartmentID})
	}
	s.logger.Error(op+" employee failed", zap.Int64("employee_id", emp.ID), zap.Error(err))
	return apperrors.NewStoreUnavailable("failed to "+op+" employee", err)
}
