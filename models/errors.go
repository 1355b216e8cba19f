package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinels for errors.Is. Each typed error below matches exactly one of them.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("username or email already in use")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInternalServer     = errors.New("internal server error")
)

// ErrorValidation carries the failing fields, keyed by their JSON name.
type ErrorValidation struct {
	Fields map[string][]string
}

func (e ErrorValidation) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(names, ", "))
}

func (e ErrorValidation) Is(target error) bool { return target == ErrValidation }

// NewFieldError builds a validation error for a single field.
func NewFieldError(field, message string) ErrorValidation {
	return ErrorValidation{Fields: map[string][]string{field: {message}}}
}

type ErrorConflict struct {
	Message string
}

func (e ErrorConflict) Error() string {
	if e.Message == "" {
		return ErrConflict.Error()
	}
	return e.Message
}

func (e ErrorConflict) Is(target error) bool { return target == ErrConflict }

type ErrorUnauthorized struct {
	Message string
}

func (e ErrorUnauthorized) Error() string {
	if e.Message == "" {
		return ErrUnauthorized.Error()
	}
	return e.Message
}

func (e ErrorUnauthorized) Is(target error) bool { return target == ErrUnauthorized }

type ErrorNotFound struct {
	Message string
}

func (e ErrorNotFound) Error() string {
	if e.Message == "" {
		return ErrNotFound.Error()
	}
	return e.Message
}

func (e ErrorNotFound) Is(target error) bool { return target == ErrNotFound }

// ErrorInvalidCredentials never says which of email or password was wrong.
type ErrorInvalidCredentials struct{}

func (ErrorInvalidCredentials) Error() string { return ErrInvalidCredentials.Error() }

func (ErrorInvalidCredentials) Is(target error) bool { return target == ErrInvalidCredentials }

// ErrorInternalServer wraps the underlying cause. Only the generic message
// reaches the client.
type ErrorInternalServer struct {
	Err error
}

func (e ErrorInternalServer) Error() string {
	if e.Err == nil {
		return ErrInternalServer.Error()
	}
	return fmt.Sprintf("%s: %v", ErrInternalServer, e.Err)
}

func (e ErrorInternalServer) Unwrap() error { return e.Err }

func (e ErrorInternalServer) Is(target error) bool { return target == ErrInternalServer }
