package store

import "errors"

var (
	// ErrNotFound is returned by point lookups that match no record.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned when creating a user with an email that is
	// already registered.
	ErrEmailTaken = errors.New("email already registered")
)
