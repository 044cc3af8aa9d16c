package coordsystem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// rankedRows returns one default-version row per name, with id and rank
// following argument order.
func rankedRows(names ...string) []Row {
	rows := make([]Row, len(names))
	for i, name := range names {
		rows[i] = Row{ID: int64(i + 1), Name: name, Rank: i + 1, Attrib: "default_version"}
	}
	return rows
}

func TestGetMappingPath_Direct(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: ensemblRows(), mappings: ensemblMappings()})
	chromosome := mustFetch(t, reg, "chromosome")
	contig := mustFetch(t, reg, "contig")

	path, err := reg.GetMappingPath(chromosome, contig)
	require.NoError(t, err)
	require.Equal(t, []string{"chromosome:NCBI33", "contig"}, names(path))

	reverse, err := reg.GetMappingPath(contig, chromosome)
	require.NoError(t, err)
	require.Equal(t, names(path), names(reverse), "assembled side always comes first")
}

func TestGetMappingPath_SharedComponent(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: ensemblRows(), mappings: ensemblMappings()})
	chromosome := mustFetch(t, reg, "chromosome")
	clone := mustFetch(t, reg, "clone")

	path, err := reg.GetMappingPath(chromosome, clone)
	require.NoError(t, err)
	require.Equal(t, []string{"clone", "contig", "chromosome:NCBI33"}, names(path))

	reverse, err := reg.GetMappingPath(clone, chromosome)
	require.NoError(t, err)
	require.Equal(t, names(path), names(reverse))
}

func TestGetMappingPath_SharedComponentFreshRegistryPerOrder(t *testing.T) {
	for _, order := range [][2]string{{"chromosome", "clone"}, {"clone", "chromosome"}} {
		reg := newTestRegistry(t, &memSource{rows: ensemblRows(), mappings: ensemblMappings()})

		path, err := reg.GetMappingPath(mustFetch(t, reg, order[0]), mustFetch(t, reg, order[1]))

		require.NoError(t, err)
		require.Len(t, path, 3)
		require.Equal(t, "contig", path[1].Name(), "contig sits between both endpoints")
	}
}

func TestGetMappingPath_SiblingsThroughCommonComponent(t *testing.T) {
	reg := newTestRegistry(t, &memSource{
		rows:     rankedRows("x", "y", "z"),
		mappings: []string{"x|z", "y|z"},
	})
	x, y := mustFetch(t, reg, "x"), mustFetch(t, reg, "y")

	path, err := reg.GetMappingPath(x, y)

	require.NoError(t, err)
	require.Len(t, path, 3)
	require.Equal(t, "z", path[1].Name())
	require.ElementsMatch(t, []string{"x", "y"}, []string{path[0].Name(), path[2].Name()})
}

func TestGetMappingPath_NoPathIsCached(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: ensemblRows(), mappings: ensemblMappings()})
	chromosome := mustFetch(t, reg, "chromosome")
	est := mustFetch(t, reg, "est")

	counter := &countingAdjacency{inner: reg.mappings}
	reg.mappings = counter

	path, err := reg.GetMappingPath(chromosome, est)
	require.NoError(t, err)
	require.NotNil(t, path)
	require.Empty(t, path)
	searched := counter.calls
	require.Positive(t, searched)

	again, err := reg.GetMappingPath(chromosome, est)
	require.NoError(t, err)
	require.Empty(t, again)
	require.Equal(t, searched, counter.calls, "second call is served from the cache")

	_, err = reg.GetMappingPath(est, chromosome)
	require.NoError(t, err)
	require.Equal(t, searched, counter.calls, "reverse order shares the cache entry")
}

func TestGetMappingPath_ReturnsCopy(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: ensemblRows(), mappings: ensemblMappings()})
	chromosome := mustFetch(t, reg, "chromosome")
	clone := mustFetch(t, reg, "clone")

	path, err := reg.GetMappingPath(chromosome, clone)
	require.NoError(t, err)
	path[0] = nil

	again, err := reg.GetMappingPath(chromosome, clone)
	require.NoError(t, err)
	require.Equal(t, []string{"clone", "contig", "chromosome:NCBI33"}, names(again))
}

func TestGetMappingPath_Cycle(t *testing.T) {
	reg := newTestRegistry(t, &memSource{
		rows:     rankedRows("a", "b", "c"),
		mappings: []string{"a|b", "b|c", "c|a"},
	})
	a, c := mustFetch(t, reg, "a"), mustFetch(t, reg, "c")

	_, err := reg.GetMappingPath(a, c)

	require.ErrorIs(t, err, ErrCircularMapping)
	require.Empty(t, reg.paths, "a failed search caches nothing")

	_, err = reg.GetMappingPath(c, a)
	require.ErrorIs(t, err, ErrCircularMapping, "the failure is not cached as an empty path")
}

func TestGetMappingPath_ReverseDeclarationIsCycle(t *testing.T) {
	reg := newTestRegistry(t, &memSource{
		rows:     rankedRows("a", "b", "c"),
		mappings: []string{"a|b", "b|a"},
	})

	_, err := reg.GetMappingPath(mustFetch(t, reg, "a"), mustFetch(t, reg, "c"))

	require.ErrorIs(t, err, ErrCircularMapping)
}

func TestGetMappingPath_CycleElsewhereDoesNotBlock(t *testing.T) {
	reg := newTestRegistry(t, &memSource{
		rows:     rankedRows("chromosome", "contig", "a", "b"),
		mappings: []string{"chromosome|contig", "a|b", "b|a"},
	})

	path, err := reg.GetMappingPath(mustFetch(t, reg, "chromosome"), mustFetch(t, reg, "contig"))

	require.NoError(t, err)
	require.Equal(t, []string{"chromosome", "contig"}, names(path))
}

func TestGetMappingPath_DiamondIsNotACycle(t *testing.T) {
	reg := newTestRegistry(t, &memSource{
		rows:     rankedRows("top", "left", "right", "bottom"),
		mappings: []string{"top|left", "top|right", "left|bottom", "right|bottom"},
	})
	top := mustFetch(t, reg, "top")
	left := mustFetch(t, reg, "left")
	right := mustFetch(t, reg, "right")
	bottom := mustFetch(t, reg, "bottom")

	path, err := reg.GetMappingPath(top, bottom)
	require.NoError(t, err)
	require.Equal(t, []string{"top", "left", "bottom"}, names(path), "earliest declared component wins the tie")

	path, err = reg.GetMappingPath(left, right)
	require.NoError(t, err)
	require.Equal(t, []string{"right", "bottom", "left"}, names(path))
}

func TestGetMappingPath_TieBreakIndependentOfArgumentOrder(t *testing.T) {
	rows := rankedRows("a", "b", "p", "r", "q")
	mappings := []string{"a|p", "p|q", "b|r", "r|q"}
	want := []string{"b", "r", "q", "p", "a"}

	forward := newTestRegistry(t, &memSource{rows: rows, mappings: mappings})
	path, err := forward.GetMappingPath(mustFetch(t, forward, "a"), mustFetch(t, forward, "b"))
	require.NoError(t, err)
	require.Equal(t, want, names(path))

	backward := newTestRegistry(t, &memSource{rows: rows, mappings: mappings})
	path, err = backward.GetMappingPath(mustFetch(t, backward, "b"), mustFetch(t, backward, "a"))
	require.NoError(t, err)
	require.Equal(t, want, names(path))
}

func TestGetMappingPath_IndependentOfQueryHistory(t *testing.T) {
	rows := rankedRows("a", "b", "p", "r", "q")
	mappings := []string{"a|p", "p|q", "b|r", "r|q"}

	cold := newTestRegistry(t, &memSource{rows: rows, mappings: mappings})
	want, err := cold.GetMappingPath(mustFetch(t, cold, "a"), mustFetch(t, cold, "b"))
	require.NoError(t, err)

	warm := newTestRegistry(t, &memSource{rows: rows, mappings: mappings})
	for _, pair := range [][2]string{{"r", "a"}, {"q", "b"}, {"p", "b"}} {
		_, err := warm.GetMappingPath(mustFetch(t, warm, pair[0]), mustFetch(t, warm, pair[1]))
		require.NoError(t, err)
	}
	got, err := warm.GetMappingPath(mustFetch(t, warm, "b"), mustFetch(t, warm, "a"))
	require.NoError(t, err)

	require.Equal(t, names(want), names(got))
}

func TestGetMappingPath_InvalidArguments(t *testing.T) {
	reg := newTestRegistry(t, &memSource{rows: ensemblRows(), mappings: ensemblMappings()})
	contig := mustFetch(t, reg, "contig")
	unstored, err := NewBuilder("scaffold").Rank(9).Build()
	require.NoError(t, err)
	foreign := FromRow(Row{ID: 42, Name: "scaffold", Rank: 9})

	tests := []struct {
		name string
		a, b *CoordSystem
	}{
		{name: "nil", a: nil, b: contig},
		{name: "top level", a: reg.FetchTopLevel(), b: contig},
		{name: "same system", a: contig, b: contig},
		{name: "unstored", a: contig, b: unstored},
		{name: "unknown id", a: foreign, b: contig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.GetMappingPath(tt.a, tt.b)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}
