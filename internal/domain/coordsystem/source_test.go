package coordsystem

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errSourceDown = errors.New("source unavailable")

// memSource is an in-memory Source for registry tests.
type memSource struct {
	rows     []Row
	tables   []FeatureTableRow
	mappings []string

	insertErr error
	loadErr   error
	nextID    int64

	insertedSystems []Row
	insertedTables  []FeatureTableRow
}

func (s *memSource) LoadCoordSystems(context.Context) ([]Row, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.rows, nil
}

func (s *memSource) LoadFeatureTables(context.Context) ([]FeatureTableRow, error) {
	return s.tables, nil
}

func (s *memSource) LoadMappingDeclarations(context.Context) ([]string, error) {
	return s.mappings, nil
}

func (s *memSource) InsertCoordSystem(_ context.Context, row Row) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	if s.nextID == 0 {
		for _, r := range s.rows {
			s.nextID = max(s.nextID, r.ID)
		}
	}
	s.nextID++
	row.ID = s.nextID
	s.insertedSystems = append(s.insertedSystems, row)
	return row.ID, nil
}

func (s *memSource) InsertFeatureTable(_ context.Context, row FeatureTableRow) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.insertedTables = append(s.insertedTables, row)
	return nil
}

// countingAdjacency wraps the declared mappings and counts every query the
// path search makes against them.
type countingAdjacency struct {
	inner adjacency
	calls int
}

func (c *countingAdjacency) direct(a, b int64) (*CoordSystem, bool) {
	c.calls++
	return c.inner.direct(a, b)
}

func (c *countingAdjacency) components(a int64) []*CoordSystem {
	c.calls++
	return c.inner.components(a)
}

// ensemblRows is a small human-like configuration used across tests.
func ensemblRows() []Row {
	return []Row{
		{ID: 1, Name: "chromosome", Rank: 1, Version: "NCBI33", Attrib: "default_version"},
		{ID: 2, Name: "chromosome", Rank: 2, Version: "NCBI34"},
		{ID: 3, Name: "supercontig", Rank: 3, Attrib: "default_version"},
		{ID: 4, Name: "clone", Rank: 4, Attrib: "default_version"},
		{ID: 5, Name: "contig", Rank: 5, Attrib: "default_version,sequence_level"},
		{ID: 6, Name: "est", Rank: 6, Attrib: "default_version"},
	}
}

func ensemblMappings() []string {
	return []string{
		"chromosome:NCBI33|contig",
		"clone|contig",
		"supercontig|contig",
	}
}

// newTestRegistry builds a Registry over src, failing the test on error.
func newTestRegistry(t *testing.T, src *memSource) *Registry {
	t.Helper()
	reg, err := NewRegistry(context.Background(), src)
	require.NoError(t, err)
	return reg
}

// mustFetch returns the system for a name[:version] reference.
func mustFetch(t *testing.T, reg *Registry, ref string) *CoordSystem {
	t.Helper()
	parsed, err := ParseSystemRef(ref)
	require.NoError(t, err)
	lookup, err := reg.FetchByRef(parsed)
	require.NoError(t, err)
	require.True(t, lookup.Found(), "coord system %s should exist", ref)
	return lookup.System
}

// names renders a path as its name:version strings for compact assertions.
func names(path []*CoordSystem) []string {
	result := make([]string, len(path))
	for i, cs := range path {
		result[i] = cs.String()
	}
	return result
}
