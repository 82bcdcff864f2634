package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/edustack/teachstore/pkg/teachstore"
)

// Success responses carry the payload under "data"; error responses carry a
// "message" and nothing else.
type dataResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, dataResponse{Data: data})
}

func respondMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, dataResponse{Message: message})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Message: err.Error()})
}

// statusFor maps domain errors to stable HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, teachstore.ErrUserNotFound),
		errors.Is(err, teachstore.ErrBlobNotFound),
		errors.Is(err, teachstore.ErrCategoryNotFound),
		errors.Is(err, teachstore.ErrMaterialNotFound):
		return http.StatusNotFound
	case errors.Is(err, teachstore.ErrInvalidInput),
		errors.Is(err, teachstore.ErrCategoryCycle),
		errors.Is(err, teachstore.ErrCategoryHasChildren),
		errors.Is(err, teachstore.ErrNotAuthored),
		errors.Is(err, teachstore.ErrNotUTF8),
		errors.Is(err, teachstore.ErrUsernameTaken):
		return http.StatusBadRequest
	case errors.Is(err, teachstore.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, teachstore.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
