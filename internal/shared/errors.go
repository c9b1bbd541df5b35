package shared

import "errors"

var (
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

const (
	// LoginPath is where unauthenticated requests are sent.
	LoginPath = "/auth/login"
	// MsgSessionExpired is flashed when the API rejects the stored token.
	MsgSessionExpired = "Your session has expired. Please log in again."
)
