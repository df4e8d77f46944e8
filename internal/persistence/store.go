package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-triage/internal/config"
	"github.com/spec-kit/ticket-triage/internal/repository"
)

// Store is the ticket store selected by configuration.
type Store struct {
	Tickets repository.TicketRepository

	driver   string
	postgres *Postgres
	sqlite   *SQLite
}

// OpenStore connects the configured driver, applies migrations when enabled,
// and returns the matching ticket repository.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := NewPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &Store{
			Tickets:  repository.NewPostgresTicketRepository(pg.PoolHandle()),
			driver:   cfg.Driver,
			postgres: pg,
		}, nil
	case config.DriverSQLite:
		lite, err := NewSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if cfg.RunMigrations {
			if err := RunSQLiteMigrations(ctx, lite.DB, logger); err != nil {
				lite.Close()
				return nil, err
			}
		}
		return &Store{
			Tickets: repository.NewSQLiteTicketRepository(lite.DB),
			driver:  cfg.Driver,
			sqlite:  lite,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Driver names the backing engine.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks the backing engine.
func (s *Store) Ping(ctx context.Context) error {
	if s.postgres != nil {
		return s.postgres.Ping(ctx)
	}
	return s.sqlite.Ping(ctx)
}

// Close releases the backing engine.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.postgres.Close()
	s.sqlite.Close()
}
