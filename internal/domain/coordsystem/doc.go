// Package coordsystem implements the domain layer for the coordinate-system registry.
//
// This package follows the same layering as the rest of internal/domain:
//   - Contains only pure Go code with standard library imports (no external dependencies)
//   - Defines the CoordSystem entity and the Registry that indexes it
//   - Implements mapping-path resolution over the declared assembled/component graph
//   - Has no knowledge of infrastructure concerns (SQL, YAML, logging)
//
// # Core Types
//
// CoordSystem identifies one coordinate system by name, optional version and rank.
// It is a tagged value: stored systems carry a database identifier, while the single
// synthetic top-level system per Registry carries none and has rank 0. Use Builder to
// create new systems before handing them to Registry.Store.
//
// Registry is built once from a Source. Construction loads every coordinate-system row,
// every feature table association and every declared mapping up front, so that all
// Fetch* methods and GetMappingPath are in-memory lookups.
//
// # Mapping Paths
//
// GetMappingPath returns the ordered chain of coordinate systems connecting two stored
// systems through declared direct mappings. Results, including "no path", are cached per
// unordered pair for the lifetime of the Registry. A declared graph containing a cycle
// reachable from the queried pair fails with ErrCircularMapping and leaves the cache
// untouched.
//
// # Advisories
//
// Situations that are suspicious but recoverable, such as a name with no default version,
// are reported through Advisory values (on Lookup and Registry.Advisories) rather than
// logged. Callers decide whether to surface them.
package coordsystem
