package database

import (
	"fmt"
	"strings"

	"formstore/internal/config"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Source is a parsed DATABASE_URL. For SQLite, DSN is what the driver opens
// (a path or a file: URI); for Postgres it is the URL unchanged.
type Source struct {
	Driver Driver
	DSN    string
}

// ParseURL accepts sqlite:<path>, sqlite://<path>, file:<path>, a bare path,
// or a postgres:// / postgresql:// URL.
func ParseURL(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, fmt.Errorf("%w: empty database url", config.ErrConfig)
	}

	scheme, rest, found := strings.Cut(raw, ":")
	if !found {
		return Source{Driver: DriverSQLite, DSN: raw}, nil
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		path := strings.TrimPrefix(rest, "//")
		if path == "" {
			return Source{}, fmt.Errorf("%w: sqlite url %q has no path", config.ErrConfig, raw)
		}
		return Source{Driver: DriverSQLite, DSN: path}, nil
	case "file":
		return Source{Driver: DriverSQLite, DSN: raw}, nil
	case "postgres", "postgresql":
		return Source{Driver: DriverPostgres, DSN: raw}, nil
	}

	if strings.HasPrefix(rest, "//") {
		return Source{}, fmt.Errorf("%w: unsupported database scheme %q", config.ErrConfig, scheme)
	}
	// Windows drive letters and other colon-bearing paths.
	return Source{Driver: DriverSQLite, DSN: raw}, nil
}

// Path is the on-disk file behind a SQLite DSN, or "" for in-memory databases.
func (s Source) Path() string {
	if s.Driver != DriverSQLite {
		return ""
	}
	path := strings.TrimPrefix(s.DSN, "file:")
	path, _, _ = strings.Cut(path, "?")
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}
