// Package database provides database connection and initialization functionality.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver ("sqlserver")
	_ "modernc.org/sqlite"              // Pure Go SQLite driver
)

const (
	DriverSQLServer = "sqlserver"
	DriverSQLite    = "sqlite"
)

// DB wraps a pooled connection to one of the service databases
type DB struct {
	conn   *sql.DB
	driver string
	name   string // Database name for logging
}

// Config holds database configuration
type Config struct {
	Driver       string
	DSN          string
	Name         string // Friendly name for logging (e.g., "data", "control")
	MaxOpenConns int
	PingTimeout  time.Duration
}

// New opens and verifies a connection pool
func New(cfg Config) (*DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLServer
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 5 * time.Second
	}

	conn, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	configureConnectionPool(conn, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{conn: conn, driver: cfg.Driver, name: cfg.Name}, nil
}

// Wrap adopts an already opened pool, mainly for tests.
func Wrap(conn *sql.DB, driver, name string) *DB {
	return &DB{conn: conn, driver: driver, name: name}
}

func configureConnectionPool(conn *sql.DB, cfg Config) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 4
	}
	// One cycle a day, so keep the pool small and let idle connections go
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(10 * time.Minute)

	// SQLite serializes writers anyway
	if cfg.Driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying *sql.DB
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the friendly database name
func (db *DB) Name() string {
	return db.name
}

// Driver returns the driver name the pool was opened with
func (db *DB) Driver() string {
	return db.driver
}

// HealthCheck pings the database
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed for %s: %w", db.name, err)
	}
	return nil
}

// Stats reports pool usage for the status endpoint
type Stats struct {
	Name            string `json:"name"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	WaitCount       int64  `json:"wait_count"`
}

// GetStats returns connection pool statistics
func (db *DB) GetStats() Stats {
	s := db.conn.Stats()
	return Stats{
		Name:            db.name,
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
		WaitCount:       s.WaitCount,
	}
}
