package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	require.Equal(t, filepath.Join(home, "data", "cs.db"), ExpandHome("~/data/cs.db"))
	require.Equal(t, "/abs/cs.db", ExpandHome("/abs/cs.db"))
	require.Equal(t, "~", ExpandHome("~"))
	require.Equal(t, "~other/cs.db", ExpandHome("~other/cs.db"))
}

func TestResolveDBPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "genome.db")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "directory", in: dir, want: filepath.Join(dir, DBFileName)},
		{name: "directory with trailing slash", in: dir + "/", want: filepath.Join(dir, DBFileName)},
		{name: "existing file", in: file, want: file},
		{name: "new file", in: filepath.Join(dir, "new.db"), want: filepath.Join(dir, "new.db")},
		{name: "unclean", in: filepath.Join(dir, "x", "..", "new.db"), want: filepath.Join(dir, "new.db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveDBPath(tt.in))
		})
	}
}
