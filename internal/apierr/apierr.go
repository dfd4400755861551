package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes surfaced by the matching engine.
const (
	CodeProfileNotFound = "profile_not_found"
	CodeUserNotFound    = "user_not_found"
	CodeMatchNotFound   = "match_not_found"
	CodeMatchCooldown   = "match_cooldown"
	CodeMatchExists     = "match_exists"
	CodeInvalidState    = "invalid_state"
	CodeForbidden       = "forbidden"
	CodeEmailExists     = "email_exists"
	CodeBadCredentials  = "invalid_credentials"
	CodeUnauthorized    = "unauthorized"
	CodeBadInput        = "invalid_input"
)

type Error struct {
	Status int
	Code   string
	Err    error
	Meta   map[string]any
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

func (e *Error) WithMeta(key string, val any) *Error {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[key] = val
	return e
}

func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, err)
}

func Conflict(code string, err error) *Error {
	return New(http.StatusConflict, code, err)
}

func Forbidden(err error) *Error {
	return New(http.StatusForbidden, CodeForbidden, err)
}

func Unauthorized(code string, err error) *Error {
	return New(http.StatusUnauthorized, code, err)
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

// As unwraps err into an *Error when possible.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
