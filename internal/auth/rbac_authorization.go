package auth

import (
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/training-tracker/internal"
	"github.com/frahmantamala/training-tracker/internal/transport"
)

// RBACAuthorization gates routes on the role carried by the principal.
type RBACAuthorization struct {
	*transport.BaseHandler
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{BaseHandler: transport.NewBaseHandler(logger)}
}

func (ra *RBACAuthorization) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				ra.Logger.Warn("authorization check failed: principal not found in context")
				ra.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			ra.Logger.WarnContext(r.Context(), "access denied: role not allowed",
				"employee_id", principal.EmployeeID,
				"role", principal.Role,
				"required_roles", roles)
			ra.WriteAppError(w, apperrors.ErrAdminRequired)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRole("admin")
}
