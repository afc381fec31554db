package common

import (
	"errors"
	"net/http"

	"github.com/checkinblaze/checkinblaze/core"
)

// StatusFromError maps the core error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal failure and stays generic.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AbortMessage picks the outward message: taxonomy errors carry their reason,
// unexpected failures stay opaque.
func AbortMessage(err error) string {
	if StatusFromError(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
