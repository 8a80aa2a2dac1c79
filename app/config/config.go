package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// FallbackSessionSecret is used when SESSION_SECRET is unset.
const FallbackSessionSecret = "fallback-secret-change-in-production"

// Config holds the process configuration, read from the environment.
type Config struct {
	Port string `env:"PORT" envDefault:"3000"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	Database Database

	SessionSecret     string `env:"SESSION_SECRET"`
	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	AdminPassword     string `env:"ADMIN_PASSWORD"`

	RateLimitWindow      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitMaxRequests int64         `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`

	RootDir    string `env:"ROOT_DIR" envDefault:"."`
	PublicDir  string `env:"PUBLIC_DIR"`
	UploadsDir string `env:"UPLOADS_DIR"`
}

type Database struct {
	Driver      string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DSN         string `env:"DATABASE_DSN"`
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        string `env:"DB_PORT"`
	User        string `env:"DB_USER" envDefault:"root"`
	Password    string `env:"DB_PASSWORD"`
	Name        string `env:"DB_NAME" envDefault:"neosafi_store"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	// RepairSchema lets the category seeder add a missing icon column itself.
	RepairSchema bool `env:"SEED_REPAIR_SCHEMA" envDefault:"false"`
}

// Load reads .env files (when present) and then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.Env)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	if c.RateLimitMaxRequests <= 0 {
		return errors.New("RATE_LIMIT_MAX_REQUESTS must be positive")
	}
	if c.PublicDir == "" {
		c.PublicDir = filepath.Join(c.RootDir, "public")
	}
	if c.UploadsDir == "" {
		c.UploadsDir = filepath.Join(c.PublicDir, "uploads")
	}
	if c.SessionSecret == "" {
		c.SessionSecret = FallbackSessionSecret
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort("", c.Port)
}

// ConnectionString returns DATABASE_DSN, or a DSN assembled from the DB_* parts.
func (d Database) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case DriverMySQL:
		port := d.Port
		if port == "" {
			port = "3306"
		}
		mc := mysql.NewConfig()
		mc.User = d.User
		mc.Passwd = d.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(d.Host, port)
		mc.DBName = d.Name
		mc.ParseTime = true
		return mc.FormatDSN()
	case DriverSQLite:
		return d.Name + ".db"
	default:
		port := d.Port
		if port == "" {
			port = "5432"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(d.User, d.Password),
			Host:     net.JoinHostPort(d.Host, port),
			Path:     "/" + d.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	}
}
