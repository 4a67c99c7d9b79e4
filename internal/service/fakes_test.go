package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/employee-service/internal/domain"
	"github.com/spec-kit/employee-service/internal/events"
	"github.com/spec-kit/employee-service/internal/repository"
)

// store is an in-memory stand-in for the two tables, enforcing the same constraints.
type store struct {
	mu          sync.Mutex
	departments map[int64]domain.Department
	employees   map[int64]domain.Employee
	nextDept    int64
	nextEmp     int64
	failWith    error
}

func newStore() *store {
	return &store{
		departments: make(map[int64]domain.Department),
		employees:   make(map[int64]domain.Employee),
	}
}

func (s *store) addDepartment(name string) domain.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDept++
	now := time.Now().UTC()
	d := domain.Department{ID: s.nextDept, Name: name, CreatedAt: now, UpdatedAt: now}
	s.departments[d.ID] = d
	return d
}

func (s *store) addEmployee(name, email string, deptID int64, salary float64) domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEmp++
	now := time.Now().UTC()
	e := domain.Employee{ID: s.nextEmp, Name: name, Email: email, DepartmentID: deptID, Salary: salary, CreatedAt: now, UpdatedAt: now}
	s.employees[e.ID] = e
	return e
}

var (
	errUnique     = &pgconn.PgError{Code: "23505"}
	errForeignKey = &pgconn.PgError{Code: "23503"}
)

type fakeDepartmentRepo struct{ s *store }

func (r fakeDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	for _, d := range r.s.departments {
		if d.Name == dept.Name {
			return errUnique
		}
	}
	r.s.nextDept++
	dept.ID = r.s.nextDept
	dept.CreatedAt = time.Now().UTC()
	dept.UpdatedAt = dept.CreatedAt
	r.s.departments[dept.ID] = *dept
	return nil
}

func (r fakeDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, d := range r.s.departments {
		if d.Name == dept.Name && d.ID != dept.ID {
			return errUnique
		}
	}
	dept.UpdatedAt = time.Now().UTC()
	r.s.departments[dept.ID] = *dept
	return nil
}

func (r fakeDepartmentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, e := range r.s.employees {
		if e.DepartmentID == id {
			return errForeignKey
		}
	}
	delete(r.s.departments, id)
	return nil
}

func (r fakeDepartmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	d, ok := r.s.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &d, nil
}

func (r fakeDepartmentRepo) matching(filter repository.DepartmentFilter) []domain.Department {
	var out []domain.Department
	for _, d := range r.s.departments {
		if filter.NameContains != nil && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(*filter.NameContains)) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r fakeDepartmentRepo) List(_ context.Context, filter repository.DepartmentFilter) ([]domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	return window(r.matching(filter), filter.Limit, filter.Offset), nil
}

func (r fakeDepartmentRepo) Count(_ context.Context, filter repository.DepartmentFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return 0, r.s.failWith
	}
	return len(r.matching(filter)), nil
}

type fakeEmployeeRepo struct{ s *store }

func (r fakeEmployeeRepo) checkConstraints(emp *domain.Employee) error {
	if _, ok := r.s.departments[emp.DepartmentID]; !ok {
		return errForeignKey
	}
	for _, e := range r.s.employees {
		if e.Email == emp.Email && e.ID != emp.ID {
			return errUnique
		}
	}
	return nil
}

func (r fakeEmployeeRepo) Create(_ context.Context, emp *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	if err := r.checkConstraints(emp); err != nil {
		return err
	}
	r.s.nextEmp++
	emp.ID = r.s.nextEmp
	emp.CreatedAt = time.Now().UTC()
	emp.UpdatedAt = emp.CreatedAt
	stored := *emp
	stored.Department = nil
	r.s.employees[emp.ID] = stored
	return nil
}

func (r fakeEmployeeRepo) Update(_ context.Context, emp *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[emp.ID]; !ok {
		return pgx.ErrNoRows
	}
	if err := r.checkConstraints(emp); err != nil {
		return err
	}
	emp.UpdatedAt = time.Now().UTC()
	stored := *emp
	stored.Department = nil
	r.s.employees[emp.ID] = stored
	return nil
}

func (r fakeEmployeeRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.employees, id)
	return nil
}

func (r fakeEmployeeRepo) withDepartment(e domain.Employee) domain.Employee {
	if d, ok := r.s.departments[e.DepartmentID]; ok {
		e.Department = &domain.Department{ID: d.ID, Name: d.Name}
	}
	return e
}

func (r fakeEmployeeRepo) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	e, ok := r.s.employees[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	e = r.withDepartment(e)
	return &e, nil
}

func (r fakeEmployeeRepo) matching(filter repository.EmployeeFilter) []domain.Employee {
	var out []domain.Employee
	for _, e := range r.s.employees {
		if filter.DepartmentID != nil && e.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.NameContains != nil || filter.EmailContains != nil {
			hit := filter.NameContains != nil && strings.Contains(strings.ToLower(e.Name), strings.ToLower(*filter.NameContains))
			hit = hit || filter.EmailContains != nil && strings.Contains(strings.ToLower(e.Email), strings.ToLower(*filter.EmailContains))
			if !hit {
				continue
			}
		}
		out = append(out, r.withDepartment(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r fakeEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	return window(r.matching(filter), filter.Limit, filter.Offset), nil
}

func (r fakeEmployeeRepo) Count(_ context.Context, filter repository.EmployeeFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return 0, r.s.failWith
	}
	return len(r.matching(filter)), nil
}

func (r fakeEmployeeRepo) AverageSalary(_ context.Context) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return 0, r.s.failWith
	}
	if len(r.s.employees) == 0 {
		return 0, nil
	}
	var sum float64
	for _, e := range r.s.employees {
		sum += e.Salary
	}
	return sum / float64(len(r.s.employees)), nil
}

func (r fakeEmployeeRepo) CountByDepartment(_ context.Context) ([]domain.DepartmentCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	counts := map[int64]int{}
	for _, e := range r.s.employees {
		if _, ok := r.s.departments[e.DepartmentID]; ok {
			counts[e.DepartmentID]++
		}
	}
	out := []domain.DepartmentCount{}
	for id, n := range counts {
		out = append(out, domain.DepartmentCount{DepartmentName: r.s.departments[id].Name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartmentName < out[j].DepartmentName })
	return out, nil
}

func window[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		return items
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type fakeCache struct {
	stats       *domain.EmployeeStatistics
	getErr      error
	sets        int
	invalidated int
}

func (c *fakeCache) Get(context.Context) (*domain.EmployeeStatistics, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.stats, c.stats != nil, nil
}

func (c *fakeCache) Set(_ context.Context, stats *domain.EmployeeStatistics) error {
	c.stats = stats
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.stats = nil
	c.invalidated++
	return nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}
