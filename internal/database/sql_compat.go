package database

import (
	"strings"
)

// Supported driver names, as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite3"
)

// NormalizeDriver maps configuration spellings onto a registered driver name.
// Unknown drivers return "".
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgsql":
		return DriverPostgres
	case "mysql", "mariadb":
		return DriverMySQL
	case "sqlite", "sqlite3":
		return DriverSQLite
	}
	return ""
}

// IsMySQL returns true for MySQL/MariaDB.
func IsMySQL(driver string) bool {
	return NormalizeDriver(driver) == DriverMySQL
}

// IsPostgreSQL returns true for PostgreSQL.
func IsPostgreSQL(driver string) bool {
	return NormalizeDriver(driver) == DriverPostgres
}

// IsSQLite returns true for SQLite.
func IsSQLite(driver string) bool {
	return NormalizeDriver(driver) == DriverSQLite
}
