package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/tabrima/storefront/app/config"
	"gorm.io/gorm"
)

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// IconColumnVersion is the first schema version carrying categories.icon.
const IconColumnVersion int64 = 3

// Migrate applies every pending migration for the driver.
func Migrate(ctx context.Context, db *gorm.DB, driver string) (int64, error) {
	return MigrateTo(ctx, db, driver, 0)
}

// MigrateTo applies pending migrations up to version. A zero version means latest.
// It returns the schema version after applying.
func MigrateTo(ctx context.Context, db *gorm.DB, driver string, version int64) (int64, error) {
	provider, err := newProvider(db, driver)
	if err != nil {
		return 0, err
	}

	if version > 0 {
		_, err = provider.UpTo(ctx, version)
	} else {
		_, err = provider.Up(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return current, nil
}

func newProvider(db *gorm.DB, driver string) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch driver {
	case config.DriverPostgres:
		dialect = goose.DialectPostgres
	case config.DriverMySQL:
		dialect = goose.DialectMySQL
	case config.DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	dir, err := fs.Sub(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("migrations for %s: %w", driver, err)
	}

	provider, err := goose.NewProvider(dialect, sqlDB, dir)
	if err != nil {
		return nil, fmt.Errorf("new migration provider: %w", err)
	}
	return provider, nil
}
