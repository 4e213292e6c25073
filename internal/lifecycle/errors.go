package lifecycle

import (
	"errors"
	"fmt"

	"github.com/ukydev/fleetflow/internal/models"
)

// Code identifies the kind of a domain error.
type Code string

const (
	CodeNotFound           Code = "NotFound"
	CodeInvalidTransition  Code = "InvalidTransition"
	CodeCapacityExceeded   Code = "CapacityExceeded"
	CodeLicenseExpired     Code = "LicenseExpired"
	CodeVehicleUnavailable Code = "VehicleUnavailable"
	CodeDriverUnavailable  Code = "DriverUnavailable"
	CodeOdometerRegression Code = "OdometerRegression"
	CodePersistence        Code = "PersistenceFailure"
)

// ErrEntityNotFound is the sentinel Store implementations return when
// an id does not resolve to a document.
var ErrEntityNotFound = errors.New("entity not found")

// Error is a tagged domain error. Guard and not-found failures are
// expected, recoverable rejections; only CodePersistence wraps an
// underlying store failure.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the domain code of err, or "" if err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func newError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFound(kind, id string) *Error {
	return newError(CodeNotFound, "%s '%s' not found", kind, id)
}

func invalidTransition(from, to models.TripStatus) *Error {
	return newError(CodeInvalidTransition, "invalid trip transition: '%s' -> '%s'", from, to)
}

func persistence(err error) *Error {
	return &Error{Code: CodePersistence, Message: fmt.Sprintf("store commit failed: %v", err), Err: err}
}
