package coordsystem

import (
	"strings"
)

// Reserved names that resolve to special systems and can never be stored.
const (
	TopLevelName = "toplevel"
	SeqLevelName = "seqlevel"
)

// Attribute names used in the comma separated attrib column.
const (
	AttribSequenceLevel  = "sequence_level"
	AttribDefaultVersion = "default_version"
)

// kind tags a CoordSystem as either a stored system or the synthetic top-level marker.
type kind int

const (
	kindStored kind = iota
	kindTopLevel
)

// CoordSystem represents a named, optionally versioned coordinate system.
// It is immutable once built, except for the identifier assigned by Registry.Store.
type CoordSystem struct {
	kind           kind
	dbID           int64  // 0 until stored; always 0 for top-level
	name           string // e.g., "chromosome"
	version        string // e.g., "NCBI33"; "" means versionless
	rank           int    // 0 reserved for top-level
	sequenceLevel  bool
	defaultVersion bool
}

// newCoordSystem creates a stored-kind system (used by builder and row loading)
func newCoordSystem(name, version string, rank int, sequenceLevel, defaultVersion bool) *CoordSystem {
	return &CoordSystem{
		kind:           kindStored,
		name:           name,
		version:        version,
		rank:           rank,
		sequenceLevel:  sequenceLevel,
		defaultVersion: defaultVersion,
	}
}

// newTopLevel creates the synthetic top-level system.
func newTopLevel() *CoordSystem {
	return &CoordSystem{
		kind: kindTopLevel,
		name: TopLevelName,
		rank: 0,
	}
}

// FromRow reconstitutes a CoordSystem from a persisted row.
// The attrib CSV is parsed for sequence_level and default_version; unknown
// attributes are ignored.
func FromRow(row Row) *CoordSystem {
	seq, def := parseAttrib(row.Attrib)
	cs := newCoordSystem(row.Name, row.Version, row.Rank, seq, def)
	cs.dbID = row.ID
	return cs
}

// parseAttrib reads the sequence_level and default_version flags out of a CSV list.
func parseAttrib(csv string) (sequenceLevel, defaultVersion bool) {
	for _, attrib := range strings.Split(csv, ",") {
		switch strings.ToLower(strings.TrimSpace(attrib)) {
		case AttribSequenceLevel:
			sequenceLevel = true
		case AttribDefaultVersion:
			defaultVersion = true
		}
	}
	return sequenceLevel, defaultVersion
}

// DBID returns the database identifier, or 0 if the system is not stored.
func (c *CoordSystem) DBID() int64 {
	return c.dbID
}

// Name returns the coordinate system name as declared.
func (c *CoordSystem) Name() string {
	return c.name
}

// Version returns the version, "" when versionless.
func (c *CoordSystem) Version() string {
	return c.version
}

// Rank returns the rank; 0 only for the top-level system.
func (c *CoordSystem) Rank() int {
	return c.rank
}

// IsSequenceLevel reports whether raw sequence is stored at this level.
func (c *CoordSystem) IsSequenceLevel() bool {
	return c.sequenceLevel
}

// IsDefaultVersion reports whether this is the default version for its name.
func (c *CoordSystem) IsDefaultVersion() bool {
	return c.defaultVersion
}

// IsTopLevel reports whether this is the synthetic top-level system.
func (c *CoordSystem) IsTopLevel() bool {
	return c.kind == kindTopLevel
}

// IsStored reports whether the system has been assigned an identifier.
func (c *CoordSystem) IsStored() bool {
	return c.kind == kindStored && c.dbID > 0
}

// Attrib renders the flags back into the CSV form used for persistence.
func (c *CoordSystem) Attrib() string {
	var attribs []string
	if c.defaultVersion {
		attribs = append(attribs, AttribDefaultVersion)
	}
	if c.sequenceLevel {
		attribs = append(attribs, AttribSequenceLevel)
	}
	return strings.Join(attribs, ",")
}

// Equals compares two systems by kind, lower-cased name and version.
func (c *CoordSystem) Equals(other *CoordSystem) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.kind != other.kind {
		return false
	}
	return strings.EqualFold(c.name, other.name) && c.version == other.version
}

// String returns "name:version", or just "name" for versionless systems.
func (c *CoordSystem) String() string {
	if c.version == "" {
		return c.name
	}
	return c.name + ":" + c.version
}

// Row returns the persistence form of the system.
func (c *CoordSystem) Row() Row {
	return Row{
		ID:      c.dbID,
		Name:    c.name,
		Rank:    c.rank,
		Version: c.version,
		Attrib:  c.Attrib(),
	}
}

// isReservedName reports whether name is one of the special aliases.
func isReservedName(name string) bool {
	lower := strings.ToLower(name)
	return lower == TopLevelName || lower == SeqLevelName
}
