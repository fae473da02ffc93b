package repository

import "errors"

var (
	// ErrUserNotFound is returned when no user has the requested username.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned when the username is already registered.
	ErrDuplicateUser = errors.New("username already registered")

	// ErrEdgeNotFound is returned when no edge matches the (from, to, state) filter.
	ErrEdgeNotFound = errors.New("follow edge not found")

	// ErrEdgeExists is returned when an edge already exists for the (from, to) pair.
	ErrEdgeExists = errors.New("follow edge already exists")
)
