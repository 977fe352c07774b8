package auth

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/training-tracker/internal"
	"github.com/frahmantamala/training-tracker/internal/transport"
	"github.com/frahmantamala/training-tracker/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func toAppError(err error) error {
	var verr ValidationError
	switch {
	case errors.As(err, &verr):
		return apperrors.NewValidationError(verr.Msg, apperrors.ErrCodeValidationFailed)
	case errors.Is(err, ErrInvalidCredentials):
		return apperrors.ErrInvalidCredentials
	case errors.Is(err, ErrTokenExpired):
		return apperrors.ErrTokenExpired
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrEmployeeGone):
		return apperrors.ErrInvalidToken
	default:
		return err
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("authentication failed", "error", err)
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("token refresh failed", "error", err)
		h.HandleServiceError(w, toAppError(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout only checks the token; sessions are stateless and clients drop
// their tokens.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.HandleServiceError(w, toAppError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware validates the bearer token and loads the employee into the
// request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err)
			h.HandleServiceError(w, toAppError(err))
			return
		}

		principal, err := h.Service.LoadPrincipal(r.Context(), claims.EmployeeID)
		if err != nil {
			h.Logger.Warn("auth middleware: failed to load employee", "employee_id", claims.EmployeeID, "error", err)
			h.HandleServiceError(w, toAppError(err))
			return
		}

		ctx := ContextWithPrincipal(r.Context(), principal)
		ctx = apperrors.ContextWithEmployeeID(ctx, principal.EmployeeID)
		ctx = logger.With(ctx, "employee_id", principal.EmployeeID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
