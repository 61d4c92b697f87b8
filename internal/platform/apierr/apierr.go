package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/moviegraph/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From classifies err by the sentinels it wraps. fallbackCode labels anything that
// maps to 500.
func From(err error, fallbackCode string) *Error {
	var ae *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrStoreUnavailable):
		return New(http.StatusServiceUnavailable, "store_unavailable", err)
	case errors.Is(err, pkgerrors.ErrConflict):
		return New(http.StatusConflict, "conflict", err)
	case errors.Is(err, pkgerrors.ErrRetryable):
		return New(http.StatusServiceUnavailable, "retry_later", err)
	default:
		return New(http.StatusInternalServerError, fallbackCode, err)
	}
}
