package model

import (
	"fmt"
)

// NotFoundError is an error signaling that something was not found in the
// database
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// NotFoundErrorFmt returns a NotFoundError from the passed format string and parameters
func NotFoundErrorFmt(format string, params ...any) NotFoundError {
	return NotFoundError(fmt.Sprintf(format, params...))
}

// AlreadyExistsError is an error signaling that a unique value is already
// taken
type AlreadyExistsError string

// Error implements the error interface
func (e AlreadyExistsError) Error() string {
	return string(e)
}

// AlreadyExistsErrorFmt returns an AlreadyExistsError from the passed format string and parameters
func AlreadyExistsErrorFmt(format string, params ...any) AlreadyExistsError {
	return AlreadyExistsError(fmt.Sprintf(format, params...))
}

// ValidationError signals invalid user input, e.g. an empty comment
type ValidationError string

// Error implements the error interface
func (e ValidationError) Error() string {
	return string(e)
}

// ValidationErrorFmt returns a ValidationError from the passed format string and parameters
func ValidationErrorFmt(format string, params ...any) ValidationError {
	return ValidationError(fmt.Sprintf(format, params...))
}

// ForbiddenError signals that the caller is authenticated but not allowed to
// act on the resource
type ForbiddenError string

// Error implements the error interface
func (e ForbiddenError) Error() string {
	return string(e)
}

// ForbiddenErrorFmt returns a ForbiddenError from the passed format string and parameters
func ForbiddenErrorFmt(format string, params ...any) ForbiddenError {
	return ForbiddenError(fmt.Sprintf(format, params...))
}

// UnauthorizedError signals that no session was presented
type UnauthorizedError string

// Error implements the error interface
func (e UnauthorizedError) Error() string {
	return string(e)
}

// InvalidTokenError signals a session token that is malformed or not signed
// with our secret
type InvalidTokenError string

// Error implements the error interface
func (e InvalidTokenError) Error() string {
	return string(e)
}

// InvalidTokenErrorFmt returns an InvalidTokenError from the passed format string and parameters
func InvalidTokenErrorFmt(format string, params ...any) InvalidTokenError {
	return InvalidTokenError(fmt.Sprintf(format, params...))
}
