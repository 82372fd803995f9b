package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// ValidationError aggregates every violated rule of one check.
type ValidationError struct {
	Problems []string
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "you must be logged in"
	}
	return e.Message
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrUnauthenticated }

type AuthorizationError struct {
	Action    string
	BookingID string
}

func (e *AuthorizationError) Error() string {
	return "not allowed to " + e.Action + " booking " + e.BookingID
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrForbidden }

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " " + e.ID + " not found"
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
