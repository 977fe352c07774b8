package confirmation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/training-tracker/internal"
	"github.com/frahmantamala/training-tracker/internal/auth"
	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/frahmantamala/training-tracker/internal/employee"
	"github.com/frahmantamala/training-tracker/internal/transport"
	"github.com/frahmantamala/training-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Confirm(ctx context.Context, employeeID string, dto ConfirmDTO) (*ConfirmResponse, error)
	PendingFor(ctx context.Context, employeeID string) ([]PendingCourse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*Confirmation, error)
	ListByCourse(ctx context.Context, courseID string) ([]*Confirmation, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func toAppError(err error) error {
	switch {
	case errors.Is(err, ErrCourseNotOpen):
		return apperrors.ErrCourseNotOpen
	case errors.Is(err, employee.ErrNotFound):
		return apperrors.ErrEmployeeNotFound
	default:
		return course.ToAppError(err)
	}
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return p, true
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto ConfirmDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Confirm(r.Context(), p.EmployeeID, dto)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	h.WriteJSON(w, status, resp)
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	courses, err := h.Service.PendingFor(r.Context(), p.EmployeeID)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	list, err := h.Service.ListByEmployee(r.Context(), p.EmployeeID)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, ConfirmationsResponse{Confirmations: list})
}

func (h *Handler) ByCourse(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListByCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, ConfirmationsResponse{Confirmations: list})
}
