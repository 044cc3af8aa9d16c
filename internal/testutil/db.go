// Package testutil provides test utilities for database setup.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/coordsys/internal/infrastructure/sqlite"
)

// NewTestDB opens a migrated database in a per-test temporary directory.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "coordsys.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewTestRepository returns the coord system repository over a fresh test database.
func NewTestRepository(t *testing.T) *sqlite.CoordSystemRepository {
	t.Helper()
	return NewTestDB(t).CoordSystemRepository()
}
