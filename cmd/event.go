package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/training-tracker/internal/core/events"
	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the event bus: list subscribed handlers and publish sample events`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample event through the registered handlers",
	Long: fmt.Sprintf(`Publish a sample event to the event bus. Supported types: %s, %s, %s.
course.overdue needs --course to point at an existing course.`,
		events.EventTypeAttendanceSigned, events.EventTypeCourseClosed, events.EventTypeCourseOverdue),
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var listHandlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List how many handlers each event type has",
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
			os.Exit(1)
		}
		defer deps.DB.Close()

		for _, t := range []string{events.EventTypeAttendanceSigned, events.EventTypeCourseClosed, events.EventTypeCourseOverdue} {
			fmt.Printf("%-20s %d\n", t, deps.EventBus.HandlerCount(t))
		}
	},
}

var (
	eventCourseID   string
	eventEmployeeID string
)

func publishTestEvent(eventType string) {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.DB.Close()
	lg := deps.Logger

	var event events.Event
	switch eventType {
	case events.EventTypeAttendanceSigned:
		event = events.NewAttendanceSignedEvent(eventCourseID, eventEmployeeID, course.FormatTimestamp(time.Now()))
	case events.EventTypeCourseClosed:
		event = events.NewCourseClosedEvent(eventCourseID, "cli", 0, 0, 0)
	case events.EventTypeCourseOverdue:
		event = events.NewCourseOverdueEvent(eventCourseID, "cli", "", nil)
	default:
		fmt.Fprintf(os.Stderr, "unknown event type %q\n", eventType)
		os.Exit(1)
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	if err := deps.EventBus.PublishSync(context.Background(), event); err != nil {
		lg.Error("failed to publish event", "error", err)
		os.Exit(1)
	}
	lg.Info("test event handled successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventCourseID, "course", "", "course id carried by the event")
	publishEventCmd.Flags().StringVar(&eventEmployeeID, "employee", "", "employee id carried by the event")

	eventCmd.AddCommand(publishEventCmd)
	eventCmd.AddCommand(listHandlersCmd)
	rootCmd.AddCommand(eventCmd)
}
