package domain

import "errors"

var (
	// ErrUserNotFound is returned when a login roll is not in the roster.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the supplied password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated is returned when no session exists for a gated action.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnauthorized is returned when the session role does not match the gate.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTestNotFound indicates a test ID that is not in the stored collection.
	ErrTestNotFound = errors.New("test not found")
	// ErrInvalidQuestion is returned when a question has no options or an
	// out-of-range correct index.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrDeleteIncomplete is returned when part of a delete cascade failed
	// after local state may already have advanced.
	ErrDeleteIncomplete = errors.New("delete incomplete")
)
