package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	courseDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/course"
	"github.com/frahmantamala/training-tracker/internal/employee"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrUnknownEmployees = errors.New("attendance list references unknown employees")
	ErrAdminInList      = errors.New("administrators cannot be put on an attendance list")
)

type Repository interface {
	Create(ctx context.Context, c *courseDatamodel.Course) error
	GetByID(ctx context.Context, id string) (*courseDatamodel.Course, error)
	List(ctx context.Context, target string) ([]*courseDatamodel.Course, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]*courseDatamodel.Course, error)
	UpdateDetails(ctx context.Context, c *courseDatamodel.Course) error
	SaveRecord(ctx context.Context, courseID string, version int64, rec courseDatamodel.AttendanceRecord) error
	Delete(ctx context.Context, id string) error
}

// EmployeeLookup is the part of the employee service the course service reads.
type EmployeeLookup interface {
	List(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, error)
	GetMany(ctx context.Context, ids []string) ([]*employee.Employee, error)
}

type Service struct {
	repo      Repository
	employees EmployeeLookup
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(repo Repository, employees EmployeeLookup, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		employees: employees,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// SetClock replaces the time source; tests use it to pin "today".
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Now is the current time in the configured location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// RetryOnConflict runs fn again with a short backoff while it reports a
// version conflict.
func RetryOnConflict(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(20*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, ErrVersionConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *Service) Create(ctx context.Context, dto CreateCourseDTO) (*CourseResponse, error) {
	start, end, err := dto.Validate()
	if err != nil {
		s.logger.Warn("course validation failed", "error", err, "name", dto.Name)
		return nil, err
	}

	members, err := s.snapshotMembers(ctx, dto)
	if err != nil {
		return nil, err
	}

	c := NewCourse(uuid.NewString(), dto.Name, start, end, dto.Content, dto.Target, members)
	if err := s.repo.Create(ctx, ToDataModel(&c)); err != nil {
		s.logger.Error("failed to create course", "error", err, "name", c.Name)
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.logger.Info("course created",
		"course_id", c.ID,
		"target", c.Target,
		"attendance", len(c.Attendance))

	return s.describe(ctx, &c, false)
}

// snapshotMembers resolves the attendance list at creation time: the explicit
// id list when given, otherwise every non-admin employee of the target company.
func (s *Service) snapshotMembers(ctx context.Context, dto CreateCourseDTO) ([]string, error) {
	if len(dto.EmployeeIDs) == 0 {
		staff, err := s.employees.List(ctx, employee.ListFilter{Company: dto.Target})
		if err != nil {
			return nil, fmt.Errorf("list target employees: %w", err)
		}
		ids := make([]string, 0, len(staff))
		for _, e := range staff {
			if !e.IsAdmin() {
				ids = append(ids, e.ID)
			}
		}
		return ids, nil
	}

	ids := make([]string, 0, len(dto.EmployeeIDs))
	for _, raw := range dto.EmployeeIDs {
		id, err := employee.NormalizeID(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, raw)
		}
		ids = append(ids, id)
	}

	found, err := s.employees.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve attendance list: %w", err)
	}
	dir := employee.Directory(found)
	var missing []string
	for _, id := range ids {
		e, ok := dir[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if e.IsAdmin() {
			return nil, fmt.Errorf("%w: %s", ErrAdminInList, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmployees, strings.Join(missing, ", "))
	}
	return ids, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Course, error) {
	dm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(dm), nil
}

// Describe returns the course with derived status, progress, per-group
// outstanding counts and the resolved attendance list.
func (s *Service) Describe(ctx context.Context, id string) (*CourseResponse, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, c, true)
}

func (s *Service) describe(ctx context.Context, c *Course, withAttendance bool) (*CourseResponse, error) {
	dir, err := s.directoryFor(ctx, []*Course{c})
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(c, dir, withAttendance)
	return &resp, nil
}

func (s *Service) directoryFor(ctx context.Context, courses []*Course) (map[string]employee.Employee, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, c := range courses {
		for _, r := range c.Attendance {
			if _, ok := seen[r.EmployeeID]; !ok {
				seen[r.EmployeeID] = struct{}{}
				ids = append(ids, r.EmployeeID)
			}
		}
	}
	if len(ids) == 0 {
		return map[string]employee.Employee{}, nil
	}
	found, err := s.employees.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve attendance employees: %w", err)
	}
	return employee.Directory(found), nil
}

func (s *Service) toResponse(c *Course, dir map[string]employee.Employee, withAttendance bool) CourseResponse {
	resp := CourseResponse{
		ID:          c.ID,
		Name:        c.Name,
		StartDate:   c.Start.Format("2006-01-02"),
		EndDate:     c.End.Format("2006-01-02"),
		Content:     c.Content,
		Target:      c.Target,
		IsEnabled:   c.IsEnabled,
		Status:      DeriveStatus(*c, s.Now()),
		Version:     c.Version,
		Progress:    ComputeProgress(*c),
		Outstanding: OutstandingByGroup(*c, dir),
	}
	if withAttendance {
		resp.Attendance = AttendanceViews(*c, dir)
	}
	return resp
}

// AttendanceViews joins each record with the employee directory. Unknown
// employees keep their id and an empty name.
func AttendanceViews(c Course, dir map[string]employee.Employee) []AttendanceView {
	views := make([]AttendanceView, len(c.Attendance))
	for i, r := range c.Attendance {
		e := dir[r.EmployeeID]
		views[i] = AttendanceView{
			EmployeeID: r.EmployeeID,
			Name:       e.Name,
			Part:       e.Part,
			Group:      e.Group,
			Status:     r.Status,
			Reason:     r.Reason,
			Timestamp:  r.Timestamp,
			Signature:  r.Signature,
		}
	}
	return views
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]CourseResponse, error) {
	dms, err := s.repo.List(ctx, filter.Target)
	if err != nil {
		s.logger.Error("failed to list courses", "error", err)
		return nil, err
	}
	courses := FromDataModelSlice(dms)

	dir, err := s.directoryFor(ctx, courses)
	if err != nil {
		return nil, err
	}

	result := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		resp := s.toResponse(c, dir, false)
		if !inScope(resp.Status, filter.Scope) {
			continue
		}
		result = append(result, resp)
	}
	return result, nil
}

func inScope(status Status, scope string) bool {
	switch scope {
	case ScopeActing:
		return status != StatusClosed
	case ScopeFinished:
		return status == StatusClosed
	default:
		return true
	}
}

// Overdue lists enabled courses past their end date that are still incomplete.
func (s *Service) Overdue(ctx context.Context) ([]CourseResponse, error) {
	all, err := s.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	var overdue []CourseResponse
	for _, c := range all {
		if c.IsEnabled && c.Status == StatusPending {
			overdue = append(overdue, c)
		}
	}
	return overdue, nil
}

// ListForEmployee returns the enabled courses that have employeeID on their
// attendance list.
func (s *Service) ListForEmployee(ctx context.Context, employeeID string) ([]*Course, error) {
	dms, err := s.repo.ListForEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("failed to list employee courses", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return FromDataModelSlice(dms), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateCourseDTO) (*CourseResponse, error) {
	var updated *Course
	err := RetryOnConflict(ctx, func(ctx context.Context) error {
		c, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := applyUpdate(c, dto); err != nil {
			return err
		}
		if err := s.repo.UpdateDetails(ctx, ToDataModel(c)); err != nil {
			return err
		}
		c.Version++
		updated = c
		return nil
	})
	if err != nil {
		s.logger.Warn("course update failed", "error", err, "course_id", id)
		return nil, err
	}

	s.logger.Info("course updated", "course_id", id, "version", updated.Version)
	return s.describe(ctx, updated, false)
}

func applyUpdate(c *Course, dto UpdateCourseDTO) error {
	if dto.Name != nil {
		c.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Content != nil {
		c.Content = *dto.Content
	}
	if dto.IsEnabled != nil {
		c.IsEnabled = *dto.IsEnabled
	}
	startRaw, endRaw := c.Start.Format("2006-01-02"), c.End.Format("2006-01-02")
	if dto.StartDate != nil {
		startRaw = *dto.StartDate
	}
	if dto.EndDate != nil {
		endRaw = *dto.EndDate
	}
	start, end, err := parseWindow(startRaw, endRaw)
	if err != nil {
		return err
	}
	c.Start, c.End = start, end

	check := CreateCourseDTO{Name: c.Name, StartDate: startRaw, EndDate: endRaw, Target: c.Target}
	_, _, err = check.Validate()
	return err
}

func (s *Service) Toggle(ctx context.Context, id string) (*CourseResponse, error) {
	var toggled *Course
	err := RetryOnConflict(ctx, func(ctx context.Context) error {
		c, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		c.IsEnabled = !c.IsEnabled
		if err := s.repo.UpdateDetails(ctx, ToDataModel(c)); err != nil {
			return err
		}
		c.Version++
		toggled = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("course toggled", "course_id", id, "is_enabled", toggled.IsEnabled)
	return s.describe(ctx, toggled, false)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to delete course", "error", err, "course_id", id)
		return err
	}
	s.logger.Info("course deleted", "course_id", id)
	return nil
}

// SetReason attaches or clears the exception reason for one record.
func (s *Service) SetReason(ctx context.Context, courseID, employeeID, reason string) (*CourseResponse, error) {
	var updated Course
	err := RetryOnConflict(ctx, func(ctx context.Context) error {
		c, err := s.Get(ctx, courseID)
		if err != nil {
			return err
		}
		next, err := ApplyExceptionReason(*c, employeeID, reason)
		if err != nil {
			return err
		}
		rec, _ := next.Record(employeeID)
		if err := s.repo.SaveRecord(ctx, courseID, c.Version, RecordToDataModel(courseID, 0, rec)); err != nil {
			return err
		}
		next.Version++
		updated = next
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to set exception reason", "error", err, "course_id", courseID, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("exception reason updated",
		"course_id", courseID,
		"employee_id", employeeID,
		"excused", strings.TrimSpace(reason) != "")
	return s.describe(ctx, &updated, true)
}

// SearchPending finds unsigned records across every course that is not yet
// Closed, matching term against the employee's name or id. A blank term
// returns nothing.
func (s *Service) SearchPending(ctx context.Context, term string) ([]PendingEntry, error) {
	if strings.TrimSpace(term) == "" {
		return []PendingEntry{}, nil
	}
	dms, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	courses := FromDataModelSlice(dms)
	dir, err := s.directoryFor(ctx, courses)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	entries := []PendingEntry{}
	for _, c := range courses {
		if DeriveStatus(*c, now) == StatusClosed {
			continue
		}
		for _, r := range c.Attendance {
			if r.IsSigned() {
				continue
			}
			e, ok := dir[r.EmployeeID]
			if !ok || !e.Matches(term) {
				continue
			}
			entries = append(entries, PendingEntry{
				CourseID:   c.ID,
				CourseName: c.Name,
				EmployeeID: e.ID,
				Name:       e.Name,
				Part:       e.Part,
				Reason:     r.Reason,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CourseName != entries[j].CourseName {
			return entries[i].CourseName < entries[j].CourseName
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
