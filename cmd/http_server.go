package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/training-tracker/internal"
	"github.com/frahmantamala/training-tracker/internal/auth"
	authPostgres "github.com/frahmantamala/training-tracker/internal/auth/postgres"
	"github.com/frahmantamala/training-tracker/internal/confirmation"
	confirmationPostgres "github.com/frahmantamala/training-tracker/internal/confirmation/postgres"
	"github.com/frahmantamala/training-tracker/internal/core/events"
	"github.com/frahmantamala/training-tracker/internal/course"
	coursePostgres "github.com/frahmantamala/training-tracker/internal/course/postgres"
	"github.com/frahmantamala/training-tracker/internal/employee"
	employeePostgres "github.com/frahmantamala/training-tracker/internal/employee/postgres"
	"github.com/frahmantamala/training-tracker/internal/report"
	"github.com/frahmantamala/training-tracker/internal/transport/middleware"
	"github.com/frahmantamala/training-tracker/internal/transport/rest"
	"github.com/frahmantamala/training-tracker/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Services struct {
	Auth         *auth.Service
	Employee     *employee.Service
	Course       *course.Service
	Confirmation *confirmation.Service
	Report       *report.Service
}

type Dependencies struct {
	Config   *internal.Config
	DB       *Database
	EventBus *events.EventBus
	Services Services
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	router, err := setupRoutes(deps)
	if err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let in-flight event handlers finish before the pool goes away
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) (*chi.Mux, error) {
	cfg := deps.Config.Server

	opts := rest.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		OpenAPIPath:    cfg.OpenAPIPath,
	}
	if cfg.ValidateRequests {
		validator, err := middleware.OpenAPIValidator(cfg.OpenAPIPath, rest.BasePath, deps.Logger)
		if err != nil {
			return nil, err
		}
		opts.Validator = validator
	}

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(deps.Services.Auth),
		Employee:     employee.NewHandler(deps.Services.Employee, cfg.MaxUploadBytes),
		Course:       course.NewHandler(deps.Services.Course),
		Confirmation: confirmation.NewHandler(deps.Services.Confirmation),
		Report:       report.NewHandler(deps.Services.Report),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, deps.DB.SQLX, handlers, opts, deps.Logger)
	return router, nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := openDatabase(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)

	deps := &Dependencies{
		Config:   config,
		DB:       db,
		EventBus: bus,
		Services: buildServices(config, db, bus, lg),
		Logger:   lg,
	}

	course.NewEventHandler(deps.Services.Course, lg).RegisterEventHandlers(bus)
	return deps, nil
}

func buildServices(cfg *internal.Config, db *Database, bus *events.EventBus, lg *slog.Logger) Services {
	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(db.SQLX), tokens, lg)

	employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(db.Gorm), employee.Options{
		DefaultPassword: cfg.Training.DefaultPassword,
		BCryptCost:      cfg.Security.BCryptCost,
		ProtectedID:     cfg.Training.SeedAdminID,
	}, lg)

	courseService := course.NewService(coursePostgres.NewCourseRepository(db.Gorm), employeeService, cfg.Training.Location(), lg)

	confirmationService := confirmation.NewService(
		confirmationPostgres.NewConfirmationRepository(db.Gorm),
		courseService,
		employeeService,
		bus,
		lg,
	)

	return Services{
		Auth:         authService,
		Employee:     employeeService,
		Course:       courseService,
		Confirmation: confirmationService,
		Report:       report.NewService(courseService, lg),
	}
}
