// Package apperr defines the error taxonomy shared by repositories, services
// and handlers. Callers wrap these sentinels with context and test for them
// with errors.Is.
package apperr

import "errors"

var (
	// ErrUnauthenticated means the request carries no valid session.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotFound covers both missing rows and rows owned by someone else,
	// so existence never leaks across users.
	ErrNotFound = errors.New("not found")
	// ErrExpired means a share link is past its expiry.
	ErrExpired = errors.New("link expired")
	// ErrPasswordMismatch means a share password did not verify.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrConflict means a uniqueness rule was violated.
	ErrConflict = errors.New("already exists")
	// ErrStorage means an object storage call failed.
	ErrStorage = errors.New("storage failure")
	// ErrInvalidInput means the request was malformed.
	ErrInvalidInput = errors.New("invalid input")
)
