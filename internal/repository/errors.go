package repository

import (
	"errors"
	"strings"
)

// Sentinel errors surfaced by the repositories. Handlers map these onto
// HTTP status codes; anything else is treated as an internal failure.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailExists indicates a unique-email violation on insert.
	ErrEmailExists = errors.New("email already exists")

	// ErrNameExists indicates a unique-name violation on insert.
	ErrNameExists = errors.New("name already exists")

	// ErrTokenInvalid covers every unusable refresh token: unknown, expired
	// or revoked. The cases are deliberately indistinguishable so callers
	// cannot probe token state.
	ErrTokenInvalid = errors.New("invalid refresh token")

	// ErrTokenConsumed indicates a verification token that has already been
	// used.
	ErrTokenConsumed = errors.New("token already used")
)

// isDuplicate reports whether err is a MySQL duplicate-entry error (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
