package audit

import (
	"context"
	"fmt"
	"strings"
)

// Store persists traces. Append fails with ErrExists for a known id; Load and
// AppendOverride fail with ErrNotFound for an unknown one.
type Store interface {
	Append(ctx context.Context, t Trace) error
	Load(ctx context.Context, id string) (Trace, error)
	AppendOverride(ctx context.Context, o Override) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendNone     = "none"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Backend     string `mapstructure:"backend"`
	Dir         string `mapstructure:"dir"`
	SQLitePath  string `mapstructure:"sqlite-path"`
	DatabaseURL string `mapstructure:"database-url"`
}

// Open returns the configured store, or nil for the none backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return nil, nil
	case BackendFile:
		s, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}
