package apperror

import (
	"errors"
	"net/http"
)

// Error is a client-facing failure: an HTTP-style status code and a human
// readable message. Code and Message are independent fields; nothing is
// encoded into the message text.
type Error struct {
	Code    int
	Message string
	cause   error
}

// New creates an Error with the given status code and message.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error with the same code and message, so sentinel
// values declared with New can be compared with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Wrap returns a copy of e that carries cause for logging and errors.As.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, cause: cause}
}

func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }
func NotFound(message string) *Error   { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error   { return New(http.StatusConflict, message) }
func Forbidden(message string) *Error  { return New(http.StatusForbidden, message) }
func Internal(message string) *Error   { return New(http.StatusInternalServerError, message) }

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the status code carried by err. Errors that are not
// application errors map to 500.
func CodeOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if e, ok := As(err); ok {
		return e.Code
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client-facing message for err. Upstream failures are
// reported with a generic text so internal details do not leak.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}

func IsBadRequest(err error) bool { return hasCode(err, http.StatusBadRequest) }
func IsNotFound(err error) bool   { return hasCode(err, http.StatusNotFound) }
func IsConflict(err error) bool   { return hasCode(err, http.StatusConflict) }

func hasCode(err error, code int) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
