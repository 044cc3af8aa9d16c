package coordsystem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_IndexesNewSystem(t *testing.T) {
	src := &memSource{rows: ensemblRows()}
	reg := newTestRegistry(t, src)

	cs, err := NewBuilder("scaffold").Version("v1").Rank(7).DefaultVersion().Build()
	require.NoError(t, err)

	stored, err := reg.Store(context.Background(), cs)
	require.NoError(t, err)
	require.Same(t, cs, stored)
	require.Equal(t, int64(7), stored.DBID())
	require.True(t, stored.IsStored())

	require.Len(t, src.insertedSystems, 1)
	require.Equal(t, "default_version", src.insertedSystems[0].Attrib)

	byID, ok := reg.FetchByDBID(7)
	require.True(t, ok)
	require.Same(t, cs, byID)

	byRank, ok, err := reg.FetchByRank(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, cs, byRank)

	lookup, err := reg.FetchByName("Scaffold")
	require.NoError(t, err)
	require.Same(t, cs, lookup.System)
	require.Equal(t, AdvisoryNone, lookup.Advisory)

	require.Len(t, reg.FetchAll(), 7)
}

func TestStore_AlreadyStored(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: ensemblRows()})
	clone := mustFetch(t, reg, "clone")

	got, err := reg.Store(context.Background(), clone)

	require.ErrorIs(t, err, ErrAlreadyExists)
	require.Same(t, clone, got)
}

func TestStore_SameNameAndVersion(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: ensemblRows()})
	cs, err := NewBuilder("Chromosome").Version("NCBI33").Rank(10).Build()
	require.NoError(t, err)

	got, err := reg.Store(context.Background(), cs)

	require.ErrorIs(t, err, ErrAlreadyExists)
	require.Equal(t, int64(1), got.DBID(), "the stored system is returned")
	require.False(t, cs.IsStored())
}

func TestStore_StoreTwice(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: ensemblRows()})
	cs, err := NewBuilder("scaffold").Rank(7).Build()
	require.NoError(t, err)

	_, err = reg.Store(context.Background(), cs)
	require.NoError(t, err)

	got, err := reg.Store(context.Background(), cs)
	require.ErrorIs(t, err, ErrAlreadyExists)
	require.Same(t, cs, got)
	require.Len(t, reg.FetchAll(), 7)
}

func TestStore_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *CoordSystem
		wantErr error
	}{
		{
			name:    "nil",
			build:   func() *CoordSystem { return nil },
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "top level",
			build:   newTopLevel,
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "unknown id",
			build:   func() *CoordSystem { return FromRow(Row{ID: 99, Name: "scaffold", Rank: 9}) },
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "reserved name",
			build:   func() *CoordSystem { return newCoordSystem("seqlevel", "", 9, false, false) },
			wantErr: ErrReservedName,
		},
		{
			name:    "second sequence level",
			build:   func() *CoordSystem { return newCoordSystem("scaffold", "", 9, true, false) },
			wantErr: ErrDuplicateConflict,
		},
		{
			name:    "second default version",
			build:   func() *CoordSystem { return newCoordSystem("chromosome", "NCBI35", 9, false, true) },
			wantErr: ErrDuplicateConflict,
		},
		{
			name:    "rank collision",
			build:   func() *CoordSystem { return newCoordSystem("scaffold", "", 3, false, false) },
			wantErr: ErrDuplicateConflict,
		},
		{
			name:    "zero rank",
			build:   func() *CoordSystem { return newCoordSystem("scaffold", "", 0, false, false) },
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "negative rank",
			build:   func() *CoordSystem { return newCoordSystem("scaffold", "", -2, false, false) },
			wantErr: ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &memSource{rows: ensemblRows()}
			reg := newTestRegistry(t, src)

			_, err := reg.Store(context.Background(), tt.build())

			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, src.insertedSystems, "nothing is persisted on rejection")
			require.Len(t, reg.FetchAll(), 6)
		})
	}
}

func TestStore_RankCollisionLeavesRegistryUnchanged(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: []Row{
		{ID: 1, Name: "chromosome", Rank: 1, Version: "GRCh38", Attrib: "default_version"},
		{ID: 2, Name: "contig", Rank: 2, Attrib: "default_version,sequence_level"},
	}})
	cs, err := NewBuilder("clone").Rank(2).Build()
	require.NoError(t, err)

	_, err = reg.Store(context.Background(), cs)

	require.ErrorIs(t, err, ErrDuplicateConflict)
	require.Empty(t, reg.FetchAllByName("clone"))
	atRank, ok, err := reg.FetchByRank(2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "contig", atRank.Name())
}

func TestStore_SourceErrorHasNoSideEffect(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: ensemblRows(), insertErr: errSourceDown})
	cs, err := NewBuilder("scaffold").Rank(7).Build()
	require.NoError(t, err)

	_, err = reg.Store(context.Background(), cs)

	require.ErrorIs(t, err, errSourceDown)
	require.False(t, cs.IsStored())
	_, ok, err := reg.FetchByRank(7)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, reg.FetchAllByName("scaffold"))
}

func TestAddFeatureTable(t *testing.T) {
	src := &memSource{rows: ensemblRows()}
	reg := newTestRegistry(t, src)
	contig := mustFetch(t, reg, "contig")

	require.NoError(t, reg.AddFeatureTable(context.Background(), contig, "Simple_Feature"))
	require.NoError(t, reg.AddFeatureTable(context.Background(), contig, "simple_feature"))

	require.Equal(t, []FeatureTableRow{{TableName: "simple_feature", CoordSystemID: 5}}, src.insertedTables,
		"repeated association is persisted once")

	systems, err := reg.FetchAllByFeatureTable("SIMPLE_FEATURE")
	require.NoError(t, err)
	require.Equal(t, []string{"contig"}, names(systems))
}

func TestAddFeatureTable_Rejections(t *testing.T) {
	src := &memSource{rows: ensemblRows()}
	reg := newTestRegistry(t, src)
	contig := mustFetch(t, reg, "contig")
	unstored, err := NewBuilder("scaffold").Rank(9).Build()
	require.NoError(t, err)

	require.ErrorIs(t, reg.AddFeatureTable(context.Background(), contig, ""), ErrInvalidArgument)
	require.ErrorIs(t, reg.AddFeatureTable(context.Background(), nil, "gene"), ErrInvalidArgument)
	require.ErrorIs(t, reg.AddFeatureTable(context.Background(), reg.FetchTopLevel(), "gene"), ErrInvalidArgument)
	require.ErrorIs(t, reg.AddFeatureTable(context.Background(), unstored, "gene"), ErrInvalidArgument)
	require.Empty(t, src.insertedTables)
}

func TestAddFeatureTable_SourceError(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: ensemblRows(), insertErr: errSourceDown})
	contig := mustFetch(t, reg, "contig")

	err := reg.AddFeatureTable(context.Background(), contig, "gene")

	require.ErrorIs(t, err, errSourceDown)
	_, err = reg.FetchAllByFeatureTable("gene")
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestStore_RejectsSeparators(t *testing.T) {
	src := &memSource{rows: ensemblRows()}
	reg := newTestRegistry(t, src)

	for _, row := range []Row{
		{Name: "chr:1", Rank: 20},
		{Name: "scaffold", Version: "v1|v2", Rank: 21},
	} {
		_, err := reg.Store(context.Background(), FromRow(row))
		require.ErrorIs(t, err, ErrSeparator, row.Name)
	}
	require.Empty(t, src.insertedSystems)
}

func TestAddFeatureTable_InstanceFromEarlierLoad(t *testing.T) {
	src := &memSource{rows: ensemblRows()}
	before := newTestRegistry(t, src)
	held := mustFetch(t, before, "contig")

	reloaded := newTestRegistry(t, src)
	require.NotSame(t, held, mustFetch(t, reloaded, "contig"))

	require.NoError(t, reloaded.AddFeatureTable(context.Background(), held, "gene"))

	systems, err := reloaded.FetchAllByFeatureTable("gene")
	require.NoError(t, err)
	require.Len(t, systems, 1)
	require.Same(t, mustFetch(t, reloaded, "contig"), systems[0], "the registry's own instance is indexed")
}
