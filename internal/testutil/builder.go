package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/coordsys/internal/infrastructure/sqlite"
)

// tableData holds a meta_coord row to be inserted. The system is addressed by
// name:version and resolved to its id at build time.
type tableData struct {
	table string
	ref   string
}

// Builder accumulates rows and inserts them with plain SQL, bypassing registry
// validation so tests can also seed configurations the registry would refuse.
type Builder struct {
	t        *testing.T
	db       *sql.DB
	systems  []systemData
	tables   []tableData
	mappings []string
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t *testing.T, db *sqlite.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db.Connection()}
}

// WithSystem adds a coord system row.
func (b *Builder) WithSystem(name string, rank int, opts ...SystemOption) *Builder {
	sys := systemData{name: name, rank: rank}
	for _, opt := range opts {
		opt(&sys)
	}
	b.systems = append(b.systems, sys)
	return b
}

// WithFeatureTable links table to the system with this name and version.
func (b *Builder) WithFeatureTable(table, name, version string) *Builder {
	b.tables = append(b.tables, tableData{table: table, ref: name + ":" + version})
	return b
}

// WithMapping adds a raw "asm|cmp" declaration.
func (b *Builder) WithMapping(decls ...string) *Builder {
	b.mappings = append(b.mappings, decls...)
	return b
}

// Build inserts systems, then feature tables, then mappings, and returns the
// assigned ids keyed by "name:version".
func (b *Builder) Build() map[string]int64 {
	b.t.Helper()
	ids := make(map[string]int64, len(b.systems))
	for _, sys := range b.systems {
		ids[sys.ref()] = b.insertSystem(sys)
	}
	for _, tbl := range b.tables {
		id, ok := ids[tbl.ref]
		require.True(b.t, ok, "feature table %s references unknown system %s", tbl.table, tbl.ref)
		b.insertFeatureTable(tbl.table, id)
	}
	for _, decl := range b.mappings {
		b.insertMapping(decl)
	}
	return ids
}

func (b *Builder) insertSystem(sys systemData) int64 {
	b.t.Helper()
	result, err := b.db.Exec(
		`INSERT INTO coord_system (name, version, rank, attrib) VALUES (?, ?, ?, ?)`,
		sys.name, sys.version, sys.rank, sys.attrib(),
	)
	require.NoError(b.t, err)
	id, err := result.LastInsertId()
	require.NoError(b.t, err)
	return id
}

func (b *Builder) insertFeatureTable(table string, id int64) {
	b.t.Helper()
	_, err := b.db.Exec(`INSERT INTO meta_coord (table_name, coord_system_id) VALUES (?, ?)`, table, id)
	require.NoError(b.t, err)
}

func (b *Builder) insertMapping(decl string) {
	b.t.Helper()
	_, err := b.db.Exec(`INSERT INTO meta (meta_key, meta_value) VALUES (?, ?)`, sqlite.MetaKeyAssemblyMapping, decl)
	require.NoError(b.t, err)
}
