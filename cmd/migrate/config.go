package main

import (
	"os"
	"path/filepath"

	"bookscanner/internal/catalog"
)

// migrationsDir returns the schema directory for driver. MIGRATIONS_DIR
// overrides it entirely.
func migrationsDir(driver string) string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("db", "migrations", driver)
}

// gooseDialect maps a catalog driver to the dialect name goose expects.
func gooseDialect(driver string) string {
	if driver == catalog.DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}
