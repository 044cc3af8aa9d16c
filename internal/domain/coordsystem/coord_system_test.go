package coordsystem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromRow_ParsesAttrib(t *testing.T) {
	tests := []struct {
		name        string
		attrib      string
		wantSeq     bool
		wantDefault bool
	}{
		{name: "empty", attrib: ""},
		{name: "default only", attrib: "default_version", wantDefault: true},
		{name: "sequence only", attrib: "sequence_level", wantSeq: true},
		{name: "both", attrib: "default_version,sequence_level", wantSeq: true, wantDefault: true},
		{name: "spaces and case", attrib: " Sequence_Level , DEFAULT_VERSION ", wantSeq: true, wantDefault: true},
		{name: "unknown ignored", attrib: "top_level,default_version", wantDefault: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := FromRow(Row{ID: 7, Name: "contig", Rank: 3, Attrib: tt.attrib})

			require.Equal(t, int64(7), cs.DBID())
			require.Equal(t, tt.wantSeq, cs.IsSequenceLevel())
			require.Equal(t, tt.wantDefault, cs.IsDefaultVersion())
			require.False(t, cs.IsTopLevel())
			require.True(t, cs.IsStored())
		})
	}
}

func TestCoordSystem_Attrib(t *testing.T) {
	cs := newCoordSystem("contig", "", 5, true, true)
	require.Equal(t, "default_version,sequence_level", cs.Attrib())

	plain := newCoordSystem("clone", "", 4, false, false)
	require.Empty(t, plain.Attrib())
}

func TestCoordSystem_Row(t *testing.T) {
	cs := FromRow(Row{ID: 1, Name: "chromosome", Rank: 1, Version: "NCBI33", Attrib: "default_version"})

	require.Equal(t, Row{ID: 1, Name: "chromosome", Rank: 1, Version: "NCBI33", Attrib: "default_version"}, cs.Row())
}

func TestCoordSystem_String(t *testing.T) {
	require.Equal(t, "chromosome:NCBI33", newCoordSystem("chromosome", "NCBI33", 1, false, false).String())
	require.Equal(t, "contig", newCoordSystem("contig", "", 2, false, false).String())
	require.Equal(t, "toplevel", newTopLevel().String())
}

func TestCoordSystem_Equals(t *testing.T) {
	a := newCoordSystem("Chromosome", "NCBI33", 1, false, true)
	b := newCoordSystem("chromosome", "NCBI33", 9, false, false)
	c := newCoordSystem("chromosome", "NCBI34", 1, false, true)

	require.True(t, a.Equals(b), "name match is case-insensitive and ignores rank")
	require.False(t, a.Equals(c), "different versions are different systems")
	require.False(t, a.Equals(nil))
	require.False(t, newTopLevel().Equals(newCoordSystem("toplevel", "", 0, false, false)))
	require.True(t, newTopLevel().Equals(newTopLevel()))
}

func TestTopLevel(t *testing.T) {
	top := newTopLevel()

	require.True(t, top.IsTopLevel())
	require.False(t, top.IsStored())
	require.Equal(t, 0, top.Rank())
	require.Equal(t, int64(0), top.DBID())
}
