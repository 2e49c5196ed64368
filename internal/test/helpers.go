package test

import (
	"path/filepath"
	"runtime"
)

// ProjectRoot resolves the module root from this file's location, so tests
// find repository files regardless of the package they run in.
func ProjectRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// MigrationsDir holds the SQL migrations embedded by the db package.
func MigrationsDir() string {
	return filepath.Join(ProjectRoot(), "internal", "db", "migrations")
}
