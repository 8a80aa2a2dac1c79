// Package databasetest opens throwaway SQLite stores for tests.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tabrima/storefront/app/config"
	"github.com/tabrima/storefront/app/database"
	"gorm.io/gorm"
)

// Open returns a SQLite store in a temp dir, migrated to the latest version.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	return OpenAt(t, 0)
}

// OpenAt returns a SQLite store migrated up to version (0 means latest).
func OpenAt(t *testing.T, version int64) *gorm.DB {
	t.Helper()

	cfg := config.Database{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "store.db") + "?_foreign_keys=on",
	}
	db, closeDB, err := database.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeDB() })

	_, err = database.MigrateTo(context.Background(), db, config.DriverSQLite, version)
	require.NoError(t, err)
	return db
}
