package coordsystem

import "fmt"

// Builder errors
var (
	ErrEmptyName    = fmt.Errorf("%w: coordinate system name cannot be empty", ErrInvalidArgument)
	ErrReservedName = fmt.Errorf("%w: coordinate system name is reserved", ErrInvalidArgument)
	ErrSeparator    = fmt.Errorf("%w: coordinate system name or version contains a reference separator", ErrInvalidArgument)
)

// Builder provides a fluent API for creating coordinate systems to be stored
type Builder struct {
	name           string
	version        string
	rank           int
	sequenceLevel  bool
	defaultVersion bool
}

// NewBuilder creates a new coordinate system builder
func NewBuilder(name string) *Builder {
	return &Builder{
		name: name,
	}
}

// Version sets the version; leave unset for a versionless system
func (b *Builder) Version(v string) *Builder {
	b.version = v
	return b
}

// Rank sets the rank; must be unique and greater than zero once stored
func (b *Builder) Rank(r int) *Builder {
	b.rank = r
	return b
}

// SequenceLevel flags the system as the one holding raw sequence
func (b *Builder) SequenceLevel() *Builder {
	b.sequenceLevel = true
	return b
}

// DefaultVersion flags the system as the default version for its name
func (b *Builder) DefaultVersion() *Builder {
	b.defaultVersion = true
	return b
}

// Attrib applies the flags from a comma separated attribute list
func (b *Builder) Attrib(csv string) *Builder {
	seq, def := parseAttrib(csv)
	b.sequenceLevel = b.sequenceLevel || seq
	b.defaultVersion = b.defaultVersion || def
	return b
}

// Build creates the unstored coordinate system, validating the name.
// Rank and uniqueness rules are enforced by Registry.Store.
func (b *Builder) Build() (*CoordSystem, error) {
	if b.name == "" {
		return nil, ErrEmptyName
	}
	if isReservedName(b.name) {
		return nil, ErrReservedName
	}
	if err := checkSeparators(b.name, b.version); err != nil {
		return nil, err
	}
	return newCoordSystem(b.name, b.version, b.rank, b.sequenceLevel, b.defaultVersion), nil
}
