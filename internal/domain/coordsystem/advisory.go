package coordsystem

// Advisory flags a recoverable condition attached to an otherwise usable result.
type Advisory int

const (
	AdvisoryNone Advisory = iota
	// AdvisoryNoDefaultVersion means no version of the name is flagged default and
	// the lowest ranked version was chosen instead.
	AdvisoryNoDefaultVersion
)

func (a Advisory) String() string {
	switch a {
	case AdvisoryNone:
		return "none"
	case AdvisoryNoDefaultVersion:
		return "no_default_version"
	default:
		return "unknown"
	}
}

// Lookup is the result of a name lookup. System is nil when nothing matched.
type Lookup struct {
	System   *CoordSystem
	Advisory Advisory
}

// Found reports whether the lookup resolved to a system.
func (l Lookup) Found() bool {
	return l.System != nil
}

// LoadAdvisory records an advisory raised while resolving a mapping declaration.
type LoadAdvisory struct {
	Declaration string
	Ref         SystemRef
	Chosen      *CoordSystem
	Advisory    Advisory
}
