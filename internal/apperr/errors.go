package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	// ErrResolved is returned when accepting or rejecting a suggested edit
	// that has already been resolved; resolved edits are terminal.
	ErrResolved = errors.New("edit already resolved")
)
