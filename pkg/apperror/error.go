package apperror

import (
	"fmt"
	"net/http"
	"strings"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// UpstreamDiagnostic builds the verbose permission-failure error returned when
// the CMS accepts filtered reads of a resource but rejects writes to it even
// after credential fallback. The message enumerates the likely upstream
// misconfigurations so operators can fix the store instead of guessing; this
// surface is admin-adjacent, so leaking the diagnostic is acceptable.
func UpstreamDiagnostic(code int, collection string, attempts []string, err error) *AppError {
	msg := fmt.Sprintf(
		"Upstream write to %q was rejected (HTTP %d) although the same resource is readable. "+
			"Attempts: %s. Likely causes: the CMS role lacks update/create permission on this collection, "+
			"the API token is read-only, or the collection rejects numeric-id writes and requires documentId.",
		collection, code, strings.Join(attempts, " -> "))
	return New(code, msg, err)
}
