package course

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/training-tracker/internal/core/events"
)

type Describer interface {
	Describe(ctx context.Context, id string) (*CourseResponse, error)
}

// EventHandler reacts to attendance events. Overdue courses get a reminder
// line per employee that still owes a signature.
type EventHandler struct {
	courses Describer
	logger  *slog.Logger
}

func NewEventHandler(courses Describer, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		courses: courses,
		logger:  logger,
	}
}

func (h *EventHandler) HandleAttendanceSigned(ctx context.Context, event events.Event) error {
	signed, ok := event.(*events.AttendanceSignedEvent)
	if !ok {
		return fmt.Errorf("expected AttendanceSignedEvent, got %T", event)
	}

	h.logger.InfoContext(ctx, "attendance signed",
		"course_id", signed.CourseID,
		"employee_id", signed.EmployeeID,
		"signed_at", signed.SignedAt,
		"event_id", signed.EventID())
	return nil
}

func (h *EventHandler) HandleCourseClosed(ctx context.Context, event events.Event) error {
	closed, ok := event.(*events.CourseClosedEvent)
	if !ok {
		return fmt.Errorf("expected CourseClosedEvent, got %T", event)
	}

	h.logger.InfoContext(ctx, "course closed",
		"course_id", closed.CourseID,
		"course_name", closed.CourseName,
		"signed", closed.Signed,
		"excused", closed.Excused,
		"total", closed.Total)
	return nil
}

func (h *EventHandler) HandleCourseOverdue(ctx context.Context, event events.Event) error {
	overdue, ok := event.(*events.CourseOverdueEvent)
	if !ok {
		return fmt.Errorf("expected CourseOverdueEvent, got %T", event)
	}

	c, err := h.courses.Describe(ctx, overdue.CourseID)
	if err != nil {
		return fmt.Errorf("describe overdue course %s: %w", overdue.CourseID, err)
	}

	reminded := 0
	for _, a := range c.Attendance {
		if a.Status == RecordSigned || a.Reason != "" {
			continue
		}
		reminded++
		h.logger.WarnContext(ctx, "training confirmation overdue",
			"course_id", c.ID,
			"course_name", c.Name,
			"end_date", c.EndDate,
			"employee_id", a.EmployeeID,
			"employee_name", a.Name,
			"part", a.Part,
			"group", a.Group)
	}

	h.logger.InfoContext(ctx, "overdue reminders issued",
		"course_id", c.ID,
		"reminded", reminded,
		"outstanding", overdue.Outstanding)
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeAttendanceSigned, h.HandleAttendanceSigned)
	eventBus.Subscribe(events.EventTypeCourseClosed, h.HandleCourseClosed)
	eventBus.Subscribe(events.EventTypeCourseOverdue, h.HandleCourseOverdue)

	h.logger.Info("course event handlers registered",
		"handlers", []string{events.EventTypeAttendanceSigned, events.EventTypeCourseClosed, events.EventTypeCourseOverdue})
}
