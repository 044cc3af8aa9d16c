// Package paths resolves the on-disk locations coordsys reads and writes.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// DBFileName is the database file created inside a directory given as the
// database location.
const DBFileName = "coordsys.db"

// ExpandHome replaces a leading "~/" with the user's home directory. The path is
// returned unchanged when it has no such prefix or the home directory is unknown.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// ResolveDBPath resolves the database file from user input.
//
// Input normalization:
//   - "~/data/cs.db" -> "$HOME/data/cs.db"
//   - "/path/to/dir" (an existing directory) -> "/path/to/dir/coordsys.db"
//   - "/path/to/genome.db" -> "/path/to/genome.db"
//   - "" -> ""
func ResolveDBPath(path string) string {
	if path == "" {
		return ""
	}
	path = filepath.Clean(ExpandHome(path))

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, DBFileName)
	}
	return path
}
