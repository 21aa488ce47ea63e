package device

import (
	"fmt"
	"log/slog"
	"strings"
)

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// Open builds a Store on the backend named by kind. An empty kind selects
// the TOML file backend.
func Open(kind, path string, logger *slog.Logger) (*Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindFile:
		return New(OpenFile(path)), nil
	case KindSQLite:
		backend, err := OpenSQLite(path, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite device store: %w", err)
		}
		return New(backend), nil
	case KindMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown device store %q", kind)
	}
}
