// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors understood by RespondError.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

// Error pairs a sentinel kind with the detail shown to the client.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError builds an *Error.
func NewError(kind error, detail string) error {
	return &Error{Kind: kind, Detail: detail}
}

// RespondError maps errors to HTTP responses using RFC7807. Only the detail
// of an *Error reaches the client.
func RespondError(w http.ResponseWriter, err error) {
	detail := ""
	var httpErr *Error
	if errors.As(err, &httpErr) {
		detail = httpErr.Detail
	}
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", detail)
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", detail)
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", detail)
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", detail)
	case errors.Is(err, ErrUpstream):
		Problem(w, http.StatusBadGateway, "Bad Gateway", detail)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
