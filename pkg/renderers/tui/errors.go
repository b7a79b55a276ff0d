package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions is returned when a choice field resolves to no options and
	// the driver cannot fall back to free text.
	ErrNoOptions = errors.New("tui: choice field has no options")
)
