package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/frahmantamala/training-tracker/internal"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// OpenAPIValidator checks requests against the API document before they
// reach a handler. Paths in the document are relative to basePath.
// Requests for paths the document does not describe pass through.
func OpenAPIValidator(specPath, basePath string, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	doc.Servers = nil

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, basePath) {
				next.ServeHTTP(w, r)
				return
			}

			probe := r.Clone(r.Context())
			probe.URL.Path = strings.TrimPrefix(r.URL.Path, basePath)
			route, pathParams, err := router.FindRoute(probe)
			if err != nil {
				// chi answers unknown paths and methods
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    probe,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					ExcludeRequestBody: strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/"),
				},
			}
			verr := openapi3filter.ValidateRequest(r.Context(), input)
			// the validator may have drained and replaced the body
			r.Body = probe.Body
			if verr != nil {
				logger.WarnContext(r.Context(), "request rejected by openapi validation",
					"path", r.URL.Path, "method", r.Method, "error", verr)
				writeValidationError(w, verr)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func writeValidationError(w http.ResponseWriter, err error) {
	message := err.Error()
	field := ""
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		message = reqErr.Reason
		if reqErr.Parameter != nil {
			field = reqErr.Parameter.Name
		}
		if message == "" && reqErr.Err != nil {
			message = reqErr.Err.Error()
		}
	}
	var routeErr *routers.RouteError
	if errors.As(err, &routeErr) {
		message = routeErr.Reason
	}

	appErr := apperrors.NewValidationError(message, apperrors.ErrCodeValidationFailed)
	if field != "" {
		appErr = apperrors.NewValidationFieldError(field, message, apperrors.ErrCodeValidationFailed)
	}
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
