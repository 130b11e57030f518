// Package database selects and configures the storage backend. SQLite is
// the zero-config local default; Postgres is used when DATABASE_URL points
// at one.
package database

import (
	"os"
	"path/filepath"
	"strings"
)

// Driver identifies a storage backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// String returns the driver name.
func (d Driver) String() string {
	return string(d)
}

// IsValid reports whether the driver is a known backend.
func (d Driver) IsValid() bool {
	switch d {
	case DriverPostgres, DriverSQLite:
		return true
	default:
		return false
	}
}

// DetectDriver infers the backend from a connection string. An empty URL
// selects SQLite so local mode needs no configuration.
func DetectDriver(url string) Driver {
	if url == "" {
		return DriverSQLite
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}

	if strings.HasPrefix(url, "sqlite://") ||
		strings.HasPrefix(url, "file:") ||
		strings.HasSuffix(url, ".db") ||
		strings.HasSuffix(url, ".sqlite") ||
		strings.HasSuffix(url, ".sqlite3") {
		return DriverSQLite
	}

	return DriverPostgres
}

// Config holds backend selection and connection parameters.
type Config struct {
	// Driver selects the backend. Empty or "auto" detects from URL.
	Driver Driver

	// URL is the Postgres connection string.
	URL string

	// SQLitePath is the database file. Defaults to ~/.dayblock/data.db.
	SQLitePath string

	// MaxConns caps the Postgres pool size.
	MaxConns int
}

// ResolveDriver returns the effective driver for the config.
func (c Config) ResolveDriver() Driver {
	if c.Driver != "" && c.Driver != "auto" {
		return c.Driver
	}
	return DetectDriver(c.URL)
}

// DefaultSQLitePath returns the default database file location.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".dayblock", "data.db")
}

// EnsureDirectory creates the parent directory of a file path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
