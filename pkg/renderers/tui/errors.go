package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoFields is returned when a schema has no writable fields to prompt.
	ErrNoFields = errors.New("tui: schema has no writable fields")
)
