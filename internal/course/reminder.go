package course

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/training-tracker/internal/core/events"
	"github.com/robfig/cron/v3"
)

type OverdueLister interface {
	Overdue(ctx context.Context) ([]CourseResponse, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Reminder raises course.overdue for every enabled course whose window has
// passed while records are still outstanding.
type Reminder struct {
	courses   OverdueLister
	publisher EventPublisher
	logger    *slog.Logger
	timeout   time.Duration
}

func NewReminder(courses OverdueLister, publisher EventPublisher, logger *slog.Logger) *Reminder {
	return &Reminder{
		courses:   courses,
		publisher: publisher,
		logger:    logger,
		timeout:   2 * time.Minute,
	}
}

// Run publishes one event per overdue course and returns how many it raised.
func (r *Reminder) Run(ctx context.Context) (int, error) {
	overdue, err := r.courses.Overdue(ctx)
	if err != nil {
		return 0, fmt.Errorf("list overdue courses: %w", err)
	}

	raised := 0
	for _, c := range overdue {
		ev := events.NewCourseOverdueEvent(c.ID, c.Name, c.EndDate, c.Outstanding)
		if err := r.publisher.Publish(ctx, ev); err != nil {
			r.logger.Error("failed to publish overdue event", "course_id", c.ID, "error", err)
			continue
		}
		raised++
	}

	r.logger.Info("overdue scan finished", "overdue", len(overdue), "raised", raised)
	return raised, nil
}

// Schedule registers Run on c under spec. Starting and stopping c is up to
// the caller.
func (r *Reminder) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			r.logger.Error("overdue scan failed", "error", err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule reminder %q: %w", spec, err)
	}
	return id, nil
}
