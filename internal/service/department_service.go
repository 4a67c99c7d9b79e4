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

// DepartmentService manages departments.
type DepartmentService struct {
	departments repository.DepartmentRepository
	employees   repository.EmployeeRepository
	events      publisher
	logger      *zap.Logger
}

// DepartmentDependencies bundles collaborators for the department service.
type DepartmentDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	EmployeeRepo   repository.EmployeeRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// DepartmentListOptions define listing parameters.
type DepartmentListOptions struct {
	Page   int
	Limit  int
	Search string
}

// DepartmentPatch holds the fields an update may change.
type DepartmentPatch struct {
	Name *string
}

// NewDepartmentService constructs the service.
func NewDepartmentService(deps DepartmentDependencies) *DepartmentService {
	logger := loggerOrNop(deps.Logger)
	return &DepartmentService{
		departments: deps.DepartmentRepo,
		employees:   deps.EmployeeRepo,
		events:      publisher{dispatcher: deps.Dispatcher, logger: logger},
		logger:      logger,
	}
}

// CreateDepartment creates a new department.
func (s *DepartmentService) CreateDepartment(ctx context.Context, name string) (*domain.Department, error) {
	s.logger.Info("creating department", zap.String("name", name))

	dept := &domain.Department{Name: name}
	if err := s.departments.Create(ctx, dept); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("department with this name already exists", map[string]any{"name": name})
		}
		s.logger.Error("create department failed", zap.String("name", name), zap.Error(err))
		return nil, apperrors.NewStoreUnavailable("failed to create department", err)
	}

	s.logger.Info("department created", zap.Int64("department_id", dept.ID), zap.String("name", dept.Name))
	s.events.publish(ctx, events.NewEvent(events.EventDepartmentCreated, dept.ID, events.DepartmentPayload{Name: dept.Name}))
	return dept, nil
}

// GetDepartmentByID fetches a department.
func (s *DepartmentService) GetDepartmentByID(ctx context.Context, id int64) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			s.logger.Warn("department not found", zap.Int64("department_id", id))
			return nil, apperrors.NewNotFound("department", map[string]any{"id": id})
		}
		s.logger.Error("fetch department failed", zap.Int64("department_id", id), zap.Error(err))
		return nil, apperrors.NewStoreUnavailable("failed to fetch department", err)
	}
	return dept, nil
}

// ListDepartments returns one page of departments ordered by name.
func (s *DepartmentService) ListDepartments(ctx context.Context, opts DepartmentListOptions) (*pagination.Result[domain.Department], error) {
	page, limit := pagination.ValidateParams(opts.Page, opts.Limit)
	filter := repository.DepartmentFilter{
		NameContains: searchTerm(opts.Search),
		Limit:        limit,
		Offset:       pagination.Offset(page, limit),
	}

	total, err := s.departments.Count(ctx, filter)
	if err != nil {
		s.logger.Error("count departments failed", zap.Error(err))
		return nil, apperrors.NewStoreUnavailable("failed to fetch departments", err)
	}
	list, err := s.departments.List(ctx, filter)
	if err != nil {
		s.logger.Error("list departments failed", zap.Error(err))
		return nil, apperrors.NewStoreUnavailable("failed to fetch departments", err)
	}

	result := pagination.NewResult(list, page, limit, total)
	s.logger.Info("departments fetched",
		zap.Int("total", total),
		zap.Int("returned", len(list)),
		zap.Int("page", page))
	return &result, nil
}

// UpdateDepartment applies patch to the department with id.
func (s *DepartmentService) UpdateDepartment(ctx context.Context, id int64, patch DepartmentPatch) (*domain.Department, error) {
	dept, err := s.GetDepartmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		dept.Name = *patch.Name
	}

	if err := s.departments.Update(ctx, dept); err != nil {
		switch {
		case isNoRows(err):
			return nil, apperrors.NewNotFound("department", map[string]any{"id": id})
		case isUniqueViolation(err):
			return nil, apperrors.NewConflict("department with this name already exists", map[string]any{"name": dept.Name})
		}
		s.logger.Error("update department failed", zap.Int64("department_id", id), zap.Error(err))
		return nil, apperrors.NewStoreUnavailable("failed to update department", err)
	}

	s.logger.Info("department updated", zap.Int64("department_id", id))
	s.events.publish(ctx, events.NewEvent(events.EventDepartmentUpdated, dept.ID, events.DepartmentPayload{Name: dept.Name}))
	return dept, nil
}

// DeleteDepartment removes a department that no employee references.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id int64) error {
	dept, err := s.GetDepartmentByID(ctx, id)
	if err != nil {
		return err
	}

	dependents, err := s.employees.Count(ctx, repository.EmployeeFilter{DepartmentID: &id})
	if err != nil {
		s.logger.Error("count department employees failed", zap.Int64("department_id", id), zap.Error(err))
		return apperrors.NewStoreUnavailable("failed to delete department", err)
	}
	if dependents > 0 {
		return cannotDeleteDepartment(id, dependents)
	}

	if err := s.departments.Delete(ctx, id); err != nil {
		switch {
		case isNoRows(err):
			return apperrors.NewNotFound("department", map[string]any{"id": id})
		case isForeignKeyViolation(err):
			return cannotDeleteDepartment(id, -1)
		}
		s.logger.Error("delete department failed", zap.Int64("department_id", id), zap.Error(err))
		return apperrors.NewStoreUnavailable("failed to delete department", err)
	}

	s.logger.Info("department deleted", zap.Int64("department_id", id))
	s.events.publish(ctx, events.NewEvent(events.EventDepartmentDeleted, id, events.DepartmentPayload{Name: dept.Name}))
	return nil
}

// GetDepartmentWithEmployees returns the department and every employee assigned to it.
func (s *DepartmentService) GetDepartmentWithEmployees(ctx context.Context, id int64) (*domain.Department, []domain.Employee, error) {
	dept, err := s.GetDepartmentByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	employees, err := s.employees.List(ctx, repository.EmployeeFilter{DepartmentID: &id})
	if err != nil {
		s.logger.Error("list department employees failed", zap.Int64("department_id", id), zap.Error(err))
		return nil, nil, apperrors.NewStoreUnavailable("failed to fetch department with employees", err)
	}
	if employees == nil {
		employees = []domain.Employee{}
	}
	return dept, employees, nil
}

// cannotDeleteDepartment builds the error for a delete blocked by employees; count < 0 means unknown.
func cannotDeleteDepartment(id int64, count int) error {
	details := map[string]any{"department_id": id}
	if count >= 0 {
		details["employee_count"] = count
	}
	return apperrors.NewReferentialViolation("cannot delete department with associated employees", details)
}
