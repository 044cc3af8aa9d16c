package coordsystem

import "context"

// Provider defines access to a coordinate-system registry.
// This interface enables dependency injection and facilitates testing by
// allowing mock implementations to be substituted for the concrete Registry.
type Provider interface {
	// FetchAll returns all stored systems ordered by ascending rank.
	FetchAll() []*CoordSystem

	// FetchByRank returns the system at rank; rank 0 is the top-level system.
	FetchByRank(rank int) (*CoordSystem, bool, error)

	// FetchByRef resolves a name[:version] reference.
	FetchByRef(ref SystemRef) (Lookup, error)

	// FetchAllByName returns every stored system sharing name, in load order.
	FetchAllByName(name string) []*CoordSystem

	// FetchByDBID returns the stored system with this identifier.
	FetchByDBID(id int64) (*CoordSystem, bool)

	// FetchTopLevel returns the synthetic top-level system.
	FetchTopLevel() *CoordSystem

	// FetchSequenceLevel returns the single sequence-level system.
	FetchSequenceLevel() (*CoordSystem, error)

	// FetchAllByFeatureTable returns the systems a feature table is associated with.
	FetchAllByFeatureTable(table string) ([]*CoordSystem, error)

	// GetMappingPath returns the chain of systems connecting a and b.
	GetMappingPath(a, b *CoordSystem) ([]*CoordSystem, error)

	// Store persists and indexes a new coordinate system.
	Store(ctx context.Context, cs *CoordSystem) (*CoordSystem, error)

	// AddFeatureTable associates a feature table with a stored system.
	AddFeatureTable(ctx context.Context, cs *CoordSystem, table string) error

	// Mappings returns the declared direct mappings.
	Mappings() []Mapping
}

// Compile-time check that Registry implements Provider.
var _ Provider = (*Registry)(nil)
