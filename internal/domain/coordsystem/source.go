package coordsystem

import "context"

// Row is the persisted form of a coordinate system.
type Row struct {
	ID      int64
	Name    string
	Rank    int
	Version string
	Attrib  string // e.g., "default_version,sequence_level"
}

// FeatureTableRow associates a feature table with a coordinate system.
type FeatureTableRow struct {
	TableName     string
	CoordSystemID int64
}

// Source is the persistence collaborator a Registry is built from.
// Implementations live in the infrastructure layer.
type Source interface {
	// LoadCoordSystems returns every stored coordinate system row.
	LoadCoordSystems(ctx context.Context) ([]Row, error)

	// LoadFeatureTables returns every table to coordinate system association.
	LoadFeatureTables(ctx context.Context) ([]FeatureTableRow, error)

	// LoadMappingDeclarations returns the declared "asm|cmp" strings in declaration order.
	LoadMappingDeclarations(ctx context.Context) ([]string, error)

	// InsertCoordSystem persists a new row and returns its assigned identifier.
	InsertCoordSystem(ctx context.Context, row Row) (int64, error)

	// InsertFeatureTable persists a table association.
	InsertFeatureTable(ctx context.Context, row FeatureTableRow) error
}
