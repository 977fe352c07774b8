package course

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/training-tracker/internal"
	"github.com/frahmantamala/training-tracker/internal/employee"
	"github.com/frahmantamala/training-tracker/internal/transport"
	"github.com/frahmantamala/training-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateCourseDTO) (*CourseResponse, error)
	Describe(ctx context.Context, id string) (*CourseResponse, error)
	List(ctx context.Context, filter ListFilter) ([]CourseResponse, error)
	Update(ctx context.Context, id string, dto UpdateCourseDTO) (*CourseResponse, error)
	Toggle(ctx context.Context, id string) (*CourseResponse, error)
	Delete(ctx context.Context, id string) error
	SetReason(ctx context.Context, courseID, employeeID, reason string) (*CourseResponse, error)
	SearchPending(ctx context.Context, term string) ([]PendingEntry, error)
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

// ToAppError maps course errors onto the HTTP error catalogue. It is shared
// with the packages that drive the course lifecycle.
func ToAppError(err error) error {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		return apperrors.ErrCourseNotFound
	case errors.Is(err, ErrNotFound):
		return apperrors.ErrAttendanceNotFound
	case errors.Is(err, ErrVersionConflict):
		return apperrors.ErrConcurrentUpdate
	case errors.Is(err, ErrCourseMismatch), errors.Is(err, ErrIncompleteConfirmation):
		return apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed)
	case errors.Is(err, ErrUnknownEmployees), errors.Is(err, ErrAdminInList):
		return apperrors.NewValidationFieldError("employee_ids", err.Error(), apperrors.ErrCodeEmployeeNotFound)
	case errors.Is(err, employee.ErrInvalidEmployeeID):
		return apperrors.NewValidationFieldError("employee_ids", err.Error(), apperrors.ErrCodeInvalidEmployeeID)
	default:
		return err
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Scope:  r.URL.Query().Get("scope"),
		Target: r.URL.Query().Get("target"),
	}

	courses, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("List: failed to list courses", "error", err)
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, CoursesResponse{Courses: courses})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateCourseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}

	h.Logger.Info("Create: course created", "course_id", resp.ID, "attendance", resp.Progress.Total)
	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.Describe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateCourseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetReason(w http.ResponseWriter, r *http.Request) {
	var dto SetReasonDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	employeeID, err := employee.NormalizeID(chi.URLParam(r, "employeeID"))
	if err != nil {
		h.HandleServiceError(w, apperrors.ErrAttendanceNotFound)
		return
	}

	resp, err := h.Service.SetReason(r.Context(), chi.URLParam(r, "id"), employeeID, dto.Reason)
	if err != nil {
		h.HandleServiceError(w, ToAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) SearchPending(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.SearchPending(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.Logger.Error("SearchPending: search failed", "error", err)
		h.HandleServiceError(w, ToAppError(err))
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
