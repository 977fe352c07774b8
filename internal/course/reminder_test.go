package course_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/training-tracker/internal/core/events"
	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/frahmantamala/training-tracker/internal/employee"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/robfig/cron/v3"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ = Describe("Overdue reminders", func() {
	var (
		service  *course.Service
		bus      *events.EventBus
		ctx      context.Context
		courseID string
		logs     *syncBuffer
		lg       *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		logs = &syncBuffer{}
		lg = slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
		bus = events.NewEventBus(testLogger())

		service = course.NewService(newMockCourseRepository(), staffDirectory(), time.UTC, testLogger())
		service.SetClock(func() time.Time { return date("2024-01-15") })
		resp, err := service.Create(ctx, course.CreateCourseDTO{
			Name:      "Fire safety",
			StartDate: "2024-01-01",
			EndDate:   "2024-01-31",
			Target:    employee.CompanyPrimary,
		})
		Expect(err).NotTo(HaveOccurred())
		courseID = resp.ID
	})

	Describe("Reminder.Run", func() {
		It("raises nothing while the window is open", func() {
			raised, err := course.NewReminder(service, bus, testLogger()).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(raised).To(Equal(0))
		})

		It("publishes one event per overdue course", func() {
			var mu sync.Mutex
			var got []*events.CourseOverdueEvent
			bus.Subscribe(events.EventTypeCourseOverdue, func(_ context.Context, e events.Event) error {
				mu.Lock()
				defer mu.Unlock()
				got = append(got, e.(*events.CourseOverdueEvent))
				return nil
			})

			service.SetClock(func() time.Time { return date("2024-02-05") })
			raised, err := course.NewReminder(service, bus, testLogger()).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(raised).To(Equal(1))

			bus.Wait()
			mu.Lock()
			defer mu.Unlock()
			Expect(got).To(HaveLen(1))
			Expect(got[0].CourseID).To(Equal(courseID))
			Expect(got[0].EndDate).To(Equal("2024-01-31"))
			Expect(got[0].Outstanding["1P"]).To(Equal(1))
		})

		It("rejects an invalid schedule", func() {
			c := cron.New()
			r := course.NewReminder(service, bus, testLogger())
			_, err := r.Schedule(c, "not a schedule")
			Expect(err).To(HaveOccurred())

			_, err = r.Schedule(c, "@every 1h")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Entries()).To(HaveLen(1))
		})
	})

	Describe("EventHandler", func() {
		It("reminds only employees who neither signed nor were excused", func() {
			_, err := service.SetReason(ctx, courseID, "00000002", "on leave")
			Expect(err).NotTo(HaveOccurred())

			h := course.NewEventHandler(service, lg)
			ev := events.NewCourseOverdueEvent(courseID, "Fire safety", "2024-01-31", nil)
			Expect(h.HandleCourseOverdue(ctx, ev)).To(Succeed())

			Expect(logs.String()).To(ContainSubstring("employee_id=00000001"))
			Expect(logs.String()).NotTo(ContainSubstring("employee_id=00000002"))
		})

		It("rejects events of the wrong type", func() {
			h := course.NewEventHandler(service, lg)
			err := h.HandleCourseOverdue(ctx, events.NewCourseClosedEvent(courseID, "Fire safety", 1, 0, 1))
			Expect(err).To(HaveOccurred())
		})

		It("fails for a course that no longer exists", func() {
			h := course.NewEventHandler(service, lg)
			err := h.HandleCourseOverdue(ctx, events.NewCourseOverdueEvent("gone", "x", "2024-01-31", nil))
			Expect(err).To(MatchError(ContainSubstring("describe overdue course")))
		})

		It("subscribes to every attendance event", func() {
			course.NewEventHandler(service, lg).RegisterEventHandlers(bus)
			Expect(bus.HandlerCount(events.EventTypeAttendanceSigned)).To(Equal(1))
			Expect(bus.HandlerCount(events.EventTypeCourseClosed)).To(Equal(1))
			Expect(bus.HandlerCount(events.EventTypeCourseOverdue)).To(Equal(1))
		})
	})
})
