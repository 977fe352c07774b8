package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/training-tracker/internal/course"
	"github.com/frahmantamala/training-tracker/internal/transport"
	"github.com/frahmantamala/training-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Excel(ctx context.Context, courseID string) (*Document, error)
	PDF(ctx context.Context, courseID string) (*Document, error)
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

func (h *Handler) Excel(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.Excel(r.Context(), chi.URLParam(r, "id"))
	h.send(w, doc, err)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.PDF(r.Context(), chi.URLParam(r, "id"))
	h.send(w, doc, err)
}

func (h *Handler) send(w http.ResponseWriter, doc *Document, err error) {
	if err != nil {
		h.HandleServiceError(w, course.ToAppError(err))
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(doc.Body.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := doc.Body.WriteTo(w); err != nil {
		h.Logger.Warn("report download interrupted", "error", err, "filename", doc.Filename)
	}
}
