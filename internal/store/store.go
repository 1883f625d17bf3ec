// Package store persists scored candidates.
//
// Stores are insert-only: rows accumulate across batches and are never read
// back, updated or truncated by the ranking pipeline.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/cv-ranker/internal/candidate"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"

	DefaultPath = "candidates.jsonl"
)

// Store records one row per scored candidate. Implementations are safe for
// concurrent use.
type Store interface {
	Record(ctx context.Context, rec candidate.Record) error
	Close() error
}

type Config struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=file postgres"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
}

// Open builds the store selected by cfg.Driver, creating its schema or file
// when absent.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", DriverFile:
		path := strings.TrimSpace(cfg.Path)
		if path == "" {
			path = DefaultPath
		}
		return OpenFile(path)
	case DriverPostgres:
		db, err := OpenDB(cfg.DSN)
		if err != nil {
			return nil, err
		}
		s := NewSQL(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
