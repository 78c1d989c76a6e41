package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))
	for _, driver := range []string{"postgres", "sqlite"} {
		checkGooseDirectives(t, filepath.Join(repoRoot, "db", "migrations", driver))
	}
}

func checkGooseDirectives(t *testing.T, migrationsDir string) {
	t.Helper()
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", migrationsDir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(migrationsDir, e.Name()))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", e.Name(), err)
		}
		s := string(b)
		if !strings.Contains(s, "-- +goose Up") {
			t.Fatalf("%s missing '-- +goose Up'", e.Name())
		}
		if !strings.Contains(s, "-- +goose Down") {
			t.Fatalf("%s missing '-- +goose Down'", e.Name())
		}
	}
}

// Extracted ISBNs are not length-checked, so no schema may bound the column.
func TestSQLMigrations_ISBNColumnUnbounded(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))

	for _, driver := range []string{"postgres", "sqlite"} {
		b, err := os.ReadFile(filepath.Join(repoRoot, "db", "migrations", driver, "00001_create_books.sql"))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", driver, err)
		}
		if !strings.Contains(string(b), "isbn TEXT,") {
			t.Fatalf("%s: isbn column must be TEXT", driver)
		}
	}
}
