package database

import (
	"embed"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var sqlMigrations embed.FS

const sqlMigrationsDir = "migrations"

// ExtractMigrations writes the embedded sql migrations into a fresh directory
// so the file source of golang-migrate can read them. The returned cleanup
// removes that directory.
func ExtractMigrations() (string, func(), error) {
	dir, err := os.MkdirTemp("", "surfer-sql-*")
	if err != nil {
		return "", nil, errors.Wrap(err, "create migrations dir")
	}
	cleanup := func() { os.RemoveAll(dir) }

	entries, err := sqlMigrations.ReadDir(sqlMigrationsDir)
	if err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, "list embedded migrations")
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		content, err := sqlMigrations.ReadFile(path.Join(sqlMigrationsDir, entry.Name()))
		if err != nil {
			cleanup()
			return "", nil, errors.Wrapf(err, "read migration %s", entry.Name())
		}
		if err := os.WriteFile(filepath.Join(dir, entry.Name()), content, 0600); err != nil {
			cleanup()
			return "", nil, errors.Wrapf(err, "write migration %s", entry.Name())
		}
	}

	return dir, cleanup, nil
}
