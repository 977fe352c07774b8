package employee

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/training-tracker/internal"
	"github.com/frahmantamala/training-tracker/internal/auth"
	"github.com/frahmantamala/training-tracker/internal/transport"
	"github.com/frahmantamala/training-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*Employee, error)
	Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error)
	Get(ctx context.Context, id string) (*Employee, error)
	List(ctx context.Context, filter ListFilter) ([]*Employee, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, rows []ImportRow, defaultCompany string) (*ImportResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	MaxUploadBytes int64
}

func NewHandler(service ServiceAPI, maxUploadBytes int64) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Service:        service,
		MaxUploadBytes: maxUploadBytes,
	}
}

func toAppError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidEmployeeID):
		return apperrors.NewValidationFieldError("id", err.Error(), apperrors.ErrCodeInvalidEmployeeID)
	case errors.Is(err, ErrNotFound):
		return apperrors.ErrEmployeeNotFound
	case errors.Is(err, ErrAlreadyExists):
		return apperrors.ErrEmployeeExists
	case errors.Is(err, ErrProtected):
		return apperrors.ErrEmployeeProtected
	case errors.Is(err, ErrInvalidSpreadsheet):
		return apperrors.NewValidationError(err.Error(), apperrors.ErrCodeInvalidSpreadsheet)
	default:
		return err
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	e, err := h.Service.Get(r.Context(), principal.EmployeeID)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Company: r.URL.Query().Get("company"),
		Search:  r.URL.Query().Get("q"),
	}

	employees, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("List: failed to list employees", "error", err)
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, EmployeesResponse{Employees: employees})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateEmployeeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import accepts a multipart upload in the "file" field. The optional
// "company" field fills rows that leave the company column blank.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	rows, err := ParseSpreadsheet(file, header.Filename)
	if err != nil {
		h.Logger.Warn("Import: unreadable spreadsheet", "error", err, "filename", header.Filename)
		h.HandleServiceError(w, toAppError(err))
		return
	}

	company := r.FormValue("company")
	if company == "" {
		company = CompanyPrimary
	}

	result, err := h.Service.Import(r.Context(), rows, company)
	if err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
