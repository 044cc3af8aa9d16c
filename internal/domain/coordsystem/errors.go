package coordsystem

import "errors"

// Registry errors
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrConfiguration     = errors.New("invalid coordinate system configuration")
	ErrMalformedMapping  = errors.New("malformed mapping declaration")
	ErrInvalidReference  = errors.New("reference to unknown coordinate system")
	ErrCircularMapping   = errors.New("circular mapping between coordinate systems")
	ErrDuplicateConflict = errors.New("coordinate system conflicts with an existing one")

	// ErrAlreadyExists is non-fatal: Store returns the already-stored system alongside it.
	ErrAlreadyExists = errors.New("coordinate system already exists")
)
