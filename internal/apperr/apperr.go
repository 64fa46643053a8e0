// Package apperr defines the error kinds shared across the order pipeline.
// Components declare their own sentinel errors and wrap one of these kinds
// so callers can classify failures with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidState   = errors.New("invalid state")
	ErrDataIntegrity  = errors.New("data integrity violation")
	ErrTransport      = errors.New("transport failure")
	ErrPersistence    = errors.New("persistence failure")
	ErrEscalation     = errors.New("escalation failure")
	ErrMalformedInput = errors.New("malformed input")
	ErrForbidden      = errors.New("forbidden")
)

// HTTPStatus maps an error to the status code a synchronous caller should see.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrDataIntegrity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
