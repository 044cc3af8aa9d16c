package coordsystem

import (
	"fmt"
	"strings"
)

// Separators used in mapping declarations.
const (
	mappingSeparator = "|"
	versionSeparator = ":"
)

// checkSeparators rejects a name or version that a reference could not express.
func checkSeparators(name, version string) error {
	for _, field := range []string{name, version} {
		if strings.ContainsAny(field, mappingSeparator+versionSeparator) {
			return fmt.Errorf("%w: %q", ErrSeparator, field)
		}
	}
	return nil
}

// SystemRef names a coordinate system, optionally pinned to a version.
type SystemRef struct {
	Name       string
	Version    string
	HasVersion bool // distinguishes "chromosome:" (versionless) from "chromosome" (default)
}

// String renders the reference back into name[:version] form.
func (r SystemRef) String() string {
	if !r.HasVersion {
		return r.Name
	}
	return r.Name + versionSeparator + r.Version
}

// MappingDeclaration is one parsed "asm|cmp" entry.
type MappingDeclaration struct {
	Assembled SystemRef
	Component SystemRef
}

// String renders the declaration in its persisted form.
func (d MappingDeclaration) String() string {
	return d.Assembled.String() + mappingSeparator + d.Component.String()
}

// ParseSystemRef parses a colon-separated reference into components.
// Format: {name}[:{version}]
// Example: chromosome:NCBI33
//
// A trailing colon ("contig:") selects the versionless system explicitly.
func ParseSystemRef(ref string) (SystemRef, error) {
	ref = strings.TrimSpace(ref)
	name, version, hasVersion := strings.Cut(ref, versionSeparator)
	if name == "" {
		return SystemRef{}, fmt.Errorf("%w: empty name in %q", ErrInvalidArgument, ref)
	}
	if strings.Contains(version, versionSeparator) {
		return SystemRef{}, fmt.Errorf("%w: too many separators in %q", ErrInvalidArgument, ref)
	}
	return SystemRef{Name: name, Version: version, HasVersion: hasVersion}, nil
}

// ParseMappingDeclaration parses a pipe-separated mapping into its two sides.
// Format: {asmName}[:{asmVersion}]|{cmpName}[:{cmpVersion}]
// Example: chromosome:NCBI33|contig
//
// Both sides must be present and non-empty.
func ParseMappingDeclaration(decl string) (MappingDeclaration, error) {
	parts := strings.Split(decl, mappingSeparator)
	if len(parts) != 2 {
		return MappingDeclaration{}, fmt.Errorf("%w: %q must have exactly two sides", ErrMalformedMapping, decl)
	}

	asm, err := ParseSystemRef(parts[0])
	if err != nil {
		return MappingDeclaration{}, fmt.Errorf("%w: assembled side of %q", ErrMalformedMapping, decl)
	}
	cmp, err := ParseSystemRef(parts[1])
	if err != nil {
		return MappingDeclaration{}, fmt.Errorf("%w: component side of %q", ErrMalformedMapping, decl)
	}

	return MappingDeclaration{Assembled: asm, Component: cmp}, nil
}

// BuildMappingDeclaration constructs the persisted form of a mapping between two systems.
func BuildMappingDeclaration(asm, cmp *CoordSystem) string {
	return refFor(asm).String() + mappingSeparator + refFor(cmp).String()
}

// refFor returns the reference that resolves back to exactly cs.
func refFor(cs *CoordSystem) SystemRef {
	return SystemRef{Name: cs.Name(), Version: cs.Version(), HasVersion: true}
}
