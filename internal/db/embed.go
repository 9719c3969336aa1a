package db

import (
	"embed"
	"io/fs"
	"os"
)

// DevMode selects where migration files are read from: the embedded copy
// in production, the local source tree in dev so new migrations can be
// tried without rebuilding. Set from the -dev flag at startup.
var DevMode bool

//go:embed migrations
var migrationsFS embed.FS

// getMigrationsFS returns the migrations directory as a filesystem rooted
// at the migration files themselves.
func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		return os.DirFS("internal/db/migrations"), nil
	}
	return fs.Sub(migrationsFS, "migrations")
}
