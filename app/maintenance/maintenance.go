// Package maintenance holds operator tasks that talk to the database server
// directly instead of going through the models.
package maintenance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tabrima/storefront/app/config"
)

// Store runs maintenance statements on one database/sql pool.
type Store struct {
	db     *sql.DB
	driver string
}

func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Open connects with the raw driver for cfg. With serverOnly set, a MySQL
// connection is made without selecting a database, so it works before the
// store's database exists.
func Open(ctx context.Context, cfg config.Database, serverOnly bool) (*sql.DB, error) {
	dsn := cfg.ConnectionString()
	var driverName string
	switch cfg.Driver {
	case config.DriverMySQL:
		driverName = "mysql"
		if serverOnly {
			mc, err := mysql.ParseDSN(dsn)
			if err != nil {
				return nil, fmt.Errorf("parse mysql dsn: %w", err)
			}
			mc.DBName = ""
			dsn = mc.FormatDSN()
		}
	case config.DriverPostgres:
		driverName = "postgres"
	case config.DriverSQLite:
		driverName = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// ListDatabases returns the databases visible on the server.
func (s *Store) ListDatabases(ctx context.Context) ([]string, error) {
	var query string
	switch s.driver {
	case config.DriverMySQL:
		query = "SHOW DATABASES"
	case config.DriverPostgres:
		query = "SELECT datname FROM pg_database WHERE NOT datistemplate ORDER BY datname"
	case config.DriverSQLite:
		return s.sqliteDatabases(ctx)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", s.driver)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan database name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) sqliteDatabases(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			seq        int
			name, file string
		)
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, fmt.Errorf("scan database: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type CleanupResult struct {
	ProductsDeleted int64
}

// Cleanup empties the products table and drops the legacy access_links table.
// Categories are kept.
func (s *Store) Cleanup(ctx context.Context) (CleanupResult, error) {
	var res CleanupResult

	// MySQL session settings only apply to the connection that set them.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return res, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&res.ProductsDeleted); err != nil {
		return res, fmt.Errorf("count products: %w", err)
	}

	var stmts []string
	switch s.driver {
	case config.DriverMySQL:
		stmts = []string{
			"SET FOREIGN_KEY_CHECKS = 0",
			"TRUNCATE TABLE products",
			"SET FOREIGN_KEY_CHECKS = 1",
		}
	case config.DriverPostgres:
		stmts = []string{"TRUNCATE TABLE products RESTART IDENTITY CASCADE"}
	case config.DriverSQLite:
		stmts = []string{
			"DELETE FROM products",
			"DELETE FROM sqlite_sequence WHERE name = 'products'",
		}
	default:
		return res, fmt.Errorf("unsupported database driver %q", s.driver)
	}
	stmts = append(stmts, "DROP TABLE IF EXISTS access_links")

	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			if s.driver == config.DriverMySQL {
				// Leave the pooled connection usable.
				_, _ = conn.ExecContext(context.WithoutCancel(ctx), "SET FOREIGN_KEY_CHECKS = 1")
			}
			return res, fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return res, nil
}
