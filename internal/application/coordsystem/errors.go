package coordsystem

import "errors"

var (
	// ErrNotFound is returned when a reference names no stored coordinate system.
	ErrNotFound = errors.New("coordinate system not found")

	// ErrNoDefaultVersion is returned instead of an advisory when strict defaults are on.
	ErrNoDefaultVersion = errors.New("no default version")
)
