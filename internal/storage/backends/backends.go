// Package backends picks a storage.Store implementation by name.
package backends

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiliankoe/rpsdash/internal/storage"
	"github.com/kiliankoe/rpsdash/internal/storage/file"
	"github.com/kiliankoe/rpsdash/internal/storage/postgres"
	"github.com/kiliankoe/rpsdash/internal/storage/sqlite"
)

const (
	Memory   = "memory"
	File     = "file"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Shared reports whether the backend named kind may be written by several server instances at
// once, so game state has to be re-read before every change.
func Shared(kind string) bool {
	return strings.ToLower(strings.TrimSpace(kind)) == Postgres
}

// Open returns the backend named kind. path is a directory for file and the database root for
// sqlite; dsn is only used by postgres.
func Open(ctx context.Context, kind, path, dsn string) (storage.Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case Memory:
		return storage.NewMemory(), nil
	case File, "":
		return file.Open(path)
	case SQLite:
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		return sqlite.Open(filepath.Join(path, "rps.db"))
	case Postgres:
		return postgres.Open(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}
