package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/training-tracker/internal/auth"
	"github.com/frahmantamala/training-tracker/internal/confirmation"
	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/frahmantamala/training-tracker/internal/employee"
	"github.com/frahmantamala/training-tracker/internal/report"
	"github.com/frahmantamala/training-tracker/internal/transport/middleware"
	"github.com/frahmantamala/training-tracker/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
)

const BasePath = "/api/v1"

type Handlers struct {
	Auth         *auth.Handler
	Employee     *employee.Handler
	Course       *course.Handler
	Confirmation *confirmation.Handler
	Report       *report.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	OpenAPIPath    string
	// Validator is applied to every API route when set.
	Validator func(http.Handler) http.Handler
}

func RegisterAllRoutes(router chi.Router, db *sqlx.DB, h Handlers, opts RouterOptions, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI document and Swagger UI live outside the API prefix
	openAPIPath := opts.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route(BasePath, func(r chi.Router) {
		if opts.Validator != nil {
			r.Use(opts.Validator)
		}

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Post("/employees/register", h.Employee.Register)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/me", h.Employee.Me)
			pr.Get("/me/courses", h.Confirmation.Pending)
			pr.Get("/me/confirmations", h.Confirmation.Mine)
			pr.Post("/confirmations", h.Confirmation.Confirm)

			pr.Group(func(ar chi.Router) {
				ar.Use(rbac.RequireAdmin())

				ar.Route("/employees", func(er chi.Router) {
					er.Get("/", h.Employee.List)
					er.Post("/", h.Employee.Create)
					er.Post("/import", h.Employee.Import)
					er.Delete("/{id}", h.Employee.Delete)
				})

				ar.Route("/courses", func(cr chi.Router) {
					cr.Get("/", h.Course.List)
					cr.Post("/", h.Course.Create)
					cr.Get("/{id}", h.Course.Get)
					cr.Put("/{id}", h.Course.Update)
					cr.Delete("/{id}", h.Course.Delete)
					cr.Patch("/{id}/toggle", h.Course.Toggle)
					cr.Put("/{id}/attendance/{employeeID}/reason", h.Course.SetReason)
					cr.Get("/{id}/confirmations", h.Confirmation.ByCourse)
					cr.Get("/{id}/report.xlsx", h.Report.Excel)
					cr.Get("/{id}/report.pdf", h.Report.PDF)
				})

				ar.Get("/attendance/pending", h.Course.SearchPending)
			})
		})
	})
}
