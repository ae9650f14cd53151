package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite"
)

// Supported values for Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// MemoryPath opens a private in-memory SQLite database.
	MemoryPath = ":memory:"
)

// Config is read with the DB prefix by the migrate command, e.g. DB_HOST.
type Config struct {
	Driver   string `default:"postgres"`
	Host     string `default:"localhost"`
	Port     int    `default:"5432"`
	User     string `default:"fina"`
	Password string `default:"password"`
	Database string `envconfig:"NAME" default:"fina"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
	// Path is the database file used by the sqlite driver.
	Path string `default:"fina.db"`
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

func New(ctx context.Context, cfg Config) (*bun.DB, error) {
	var db *bun.DB

	switch cfg.Driver {
	case DriverPostgres, "":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN())))
		db = bun.NewDB(sqldb, pgdialect.New())

		maxOpenConns := 4 * runtime.GOMAXPROCS(0)
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite driver requires a database path")
		}
		sqldb, err := sql.Open("sqlite", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())

		// SQLite serialises writers; a single connection avoids SQLITE_BUSY
		// and keeps an in-memory database alive for the process lifetime.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)

		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if hook := debugHook(); hook != nil {
		db.AddQueryHook(hook)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// debugHook returns a query logger only when BUNDEBUG asks for one: "1" logs
// failed queries, "2" logs every query. Bound values include password hashes
// and OTP digests, so nothing is logged by default.
func debugHook() *bundebug.QueryHook {
	if v := os.Getenv("BUNDEBUG"); v == "" || v == "0" {
		return nil
	}
	return bundebug.NewQueryHook(bundebug.FromEnv("BUNDEBUG"))
}
