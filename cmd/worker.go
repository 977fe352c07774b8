package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers such as the overdue course reminders.`,
}

var reminderWorkerCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Start the overdue reminder scheduler",
	Long:  `Scan courses on the configured cron schedule and raise course.overdue for each one past its end date.`,
	Run: func(cmd *cobra.Command, args []string) {
		startReminderWorker()
	},
}

var (
	reminderSchedule string
	reminderOnce     bool
)

func startReminderWorker() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	lg := deps.Logger
	reminder := course.NewReminder(deps.Services.Course, deps.EventBus, lg)

	if reminderOnce {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := reminder.Run(ctx); err != nil {
			lg.Error("overdue scan failed", "error", err)
			os.Exit(1)
		}
		deps.EventBus.Wait()
		return
	}

	schedule := getStringFlag(reminderSchedule, deps.Config.Training.ReminderSchedule)
	scheduler := cron.New(
		cron.WithLocation(deps.Config.Training.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := reminder.Schedule(scheduler, schedule); err != nil {
		lg.Error("failed to schedule reminders", "error", err)
		os.Exit(1)
	}

	scheduler.Start()
	lg.Info("reminder worker started", "schedule", schedule, "timezone", deps.Config.Training.Timezone)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	lg.Info("received signal, shutting down reminder worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop returns a context that is done once running jobs finish
	select {
	case <-scheduler.Stop().Done():
		deps.EventBus.Wait()
		lg.Info("reminder worker shutdown complete")
	case <-ctx.Done():
		lg.Warn("shutdown timeout reached, forcing exit")
	}
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	reminderWorkerCmd.Flags().StringVar(&reminderSchedule, "schedule", "", "cron schedule (overrides config)")
	reminderWorkerCmd.Flags().BoolVar(&reminderOnce, "once", false, "run a single scan and exit")

	workerCmd.AddCommand(reminderWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}
