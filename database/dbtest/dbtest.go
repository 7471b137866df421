// Package dbtest opens a migrated sqlite database for tests.
package dbtest

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/qrmenu/database/migrations"
	"github.com/shashiranjanraj/qrmenu/pkg/database"
	"github.com/shashiranjanraj/qrmenu/pkg/migration"
)

// Open returns a fresh database in t.TempDir() with every migration applied.
// The connection is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "qrmenu.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	_, err = migration.New(db, io.Discard).Run()
	require.NoError(t, err)
	return db
}
