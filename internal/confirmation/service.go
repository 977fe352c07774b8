package confirmation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	courseDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/course"
	"github.com/frahmantamala/training-tracker/internal/core/events"
	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/frahmantamala/training-tracker/internal/employee"
)

type Repository interface {
	Get(ctx context.Context, courseID, employeeID string) (*Confirmation, error)
	// CreateAndApply inserts conf and patches the attendance record in one
	// transaction guarded by the course version. It reports false when a
	// confirmation for the pair already exists.
	CreateAndApply(ctx context.Context, conf *Confirmation, version int64, rec courseDatamodel.AttendanceRecord) (bool, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*Confirmation, error)
	ListByCourse(ctx context.Context, courseID string) ([]*Confirmation, error)
}

type CourseReader interface {
	Get(ctx context.Context, id string) (*course.Course, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]*course.Course, error)
	Now() time.Time
}

type EmployeeReader interface {
	Get(ctx context.Context, id string) (*employee.Employee, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      Repository
	courses   CourseReader
	employees EmployeeReader
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, courses CourseReader, employees EmployeeReader, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		courses:   courses,
		employees: employees,
		publisher: publisher,
		logger:    logger,
	}
}

// Confirm signs employeeID's record on the course. Confirming twice is a
// no-op that returns the stored confirmation with Created false.
func (s *Service) Confirm(ctx context.Context, employeeID string, dto ConfirmDTO) (*ConfirmResponse, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	if existing, err := s.repo.Get(ctx, dto.CourseID, employeeID); err == nil {
		return s.unchanged(ctx, existing)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var (
		saved   *Confirmation
		created bool
		before  course.Status
		after   course.Course
		now     time.Time
	)
	err := course.RetryOnConflict(ctx, func(ctx context.Context) error {
		c, err := s.courses.Get(ctx, dto.CourseID)
		if err != nil {
			return err
		}
		now = s.courses.Now()
		before = course.DeriveStatus(*c, now)
		if !c.IsEnabled || before == course.StatusPlan {
			return ErrCourseNotOpen
		}

		rec, ok := c.Record(employeeID)
		if !ok {
			return course.ErrNotFound
		}
		if rec.IsSigned() {
			saved = &Confirmation{CourseID: c.ID, EmployeeID: employeeID, Timestamp: rec.Timestamp, Signature: rec.Signature}
			after = *c
			return nil
		}

		conf := &Confirmation{
			CourseID:   c.ID,
			EmployeeID: employeeID,
			Timestamp:  course.FormatTimestamp(now),
			Signature:  dto.Signature,
			CreatedAt:  time.Now(),
		}
		next, err := course.ApplyConfirmation(*c, course.Confirmation{
			CourseID:   conf.CourseID,
			EmployeeID: conf.EmployeeID,
			Timestamp:  conf.Timestamp,
			Signature:  conf.Signature,
		})
		if err != nil {
			return err
		}

		signed, _ := next.Record(employeeID)
		ok, err = s.repo.CreateAndApply(ctx, conf, c.Version, course.RecordToDataModel(c.ID, 0, signed))
		if err != nil {
			return err
		}
		if !ok {
			existing, err := s.repo.Get(ctx, c.ID, employeeID)
			if err != nil {
				return fmt.Errorf("load concurrent confirmation: %w", err)
			}
			saved = existing
			after = *c
			return nil
		}

		saved, created, after = conf, true, next
		return nil
	})
	if err != nil {
		s.logger.Warn("confirmation rejected", "error", err, "course_id", dto.CourseID, "employee_id", employeeID)
		return nil, err
	}

	status := course.DeriveStatus(after, now)
	if created {
		s.logger.Info("attendance confirmed",
			"course_id", saved.CourseID,
			"employee_id", employeeID,
			"course_status", status)
		s.publish(ctx, events.NewAttendanceSignedEvent(saved.CourseID, employeeID, saved.Timestamp))
		if status == course.StatusClosed && before != course.StatusClosed {
			p := course.ComputeProgress(after)
			s.publish(ctx, events.NewCourseClosedEvent(after.ID, after.Name, p.Signed, p.Excused, p.Total))
		}
	}

	return &ConfirmResponse{Confirmation: saved, Created: created, CourseStatus: string(status)}, nil
}

func (s *Service) unchanged(ctx context.Context, existing *Confirmation) (*ConfirmResponse, error) {
	c, err := s.courses.Get(ctx, existing.CourseID)
	if err != nil {
		return nil, err
	}
	return &ConfirmResponse{
		Confirmation: existing,
		Created:      false,
		CourseStatus: string(course.DeriveStatus(*c, s.courses.Now())),
	}, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

// PendingFor lists the courses an employee still has to sign today: enabled,
// aimed at the employee's company, inside the window, and unsigned.
func (s *Service) PendingFor(ctx context.Context, employeeID string) ([]PendingCourse, error) {
	e, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	courses, err := s.courses.ListForEmployee(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	now := s.courses.Now()
	pending := []PendingCourse{}
	for _, c := range courses {
		if !c.IsEnabled || c.Target != e.Company || !course.InWindow(*c, now) {
			continue
		}
		rec, ok := c.Record(e.ID)
		if !ok || rec.IsSigned() {
			continue
		}
		pending = append(pending, PendingCourse{
			ID:        c.ID,
			Name:      c.Name,
			StartDate: c.Start.Format("2006-01-02"),
			EndDate:   c.End.Format("2006-01-02"),
			Content:   c.Content,
			Status:    string(course.DeriveStatus(*c, now)),
		})
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].EndDate < pending[j].EndDate
	})
	return pending, nil
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]*Confirmation, error) {
	return s.repo.ListByEmployee(ctx, employeeID)
}

func (s *Service) ListByCourse(ctx context.Context, courseID string) ([]*Confirmation, error) {
	if _, err := s.courses.Get(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.ListByCourse(ctx, courseID)
}
