package outlet

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domoutlet "github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
)

// Config selects and configures the outlet backend.
type Config struct {
	Driver          string
	DSN             string
	SeedFile        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open builds the configured store and loads the seed file when one is set.
func Open(ctx context.Context, cfg Config, schema query.Schema, logger *zap.Logger) (Store, error) {
	var seed []domoutlet.Record
	if cfg.SeedFile != "" {
		records, err := LoadRecords(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		seed = records
	}

	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(seed, schema, logger), nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.DSN, schema, logger)
		if err != nil {
			return nil, err
		}
		return seedStore(ctx, s, seed)
	case DriverPostgres:
		s, err := OpenPostgres(ctx, cfg.DSN, PoolConfig{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		}, schema, logger)
		if err != nil {
			return nil, err
		}
		return seedStore(ctx, s, seed)
	default:
		return nil, fmt.Errorf("unknown outlet driver %q", cfg.Driver)
	}
}

func seedStore(ctx context.Context, s *SQLStore, seed []domoutlet.Record) (Store, error) {
	if len(seed) == 0 {
		return s, nil
	}
	if err := s.Seed(ctx, seed); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
