package outlet

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver "pgx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // sqlite driver "sqlite"

	domoutlet "github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
	"github.com/kailas-cloud/brewdesk/internal/repository/outlet/migrations"
)

// Drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore serves outlet queries from a relational table.
type SQLStore struct {
	db       *sql.DB
	postgres bool
	schema   query.Schema
	logger   *zap.Logger
}

// PoolConfig tunes the postgres connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OpenSQLite opens (creating if needed) a sqlite database and applies the schema.
func OpenSQLite(ctx context.Context, dsn string, schema query.Schema, logger *zap.Logger) (*SQLStore, error) {
	if dsn == "" {
		dsn = "data/brewdesk.db"
	}
	if dir := filepath.Dir(dsn); dir != "" && dir != "." && dsn != ":memory:" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent across calls.
	db.SetMaxOpenConns(1)

	s := &SQLStore{db: db, schema: schema, logger: logger}
	if err := s.migrate(ctx, migrations.SQLite, "sqlite/001_outlets.sql"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenPostgres connects through the pgx stdlib driver and applies the schema.
func OpenPostgres(
	ctx context.Context, dsn string, pool PoolConfig, schema query.Schema, logger *zap.Logger,
) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &SQLStore{db: db, postgres: true, schema: schema, logger: logger}
	if err := s.migrate(ctx, migrations.Postgres, "postgres/001_outlets.sql"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

type migrationFS interface {
	ReadFile(name string) ([]byte, error)
}

func (s *SQLStore) migrate(ctx context.Context, fs migrationFS, name string) error {
	data, err := fs.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

func (s *SQLStore) backend() string {
	if s.postgres {
		return DriverPostgres
	}
	return DriverSQLite
}

// Execute validates q, runs the parameterized text predicates in SQL and the
// hours predicates on the decoded rows.
func (s *SQLStore) Execute(ctx context.Context, q query.Query) ([]domoutlet.Record, error) {
	if err := s.schema.Validate(q); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	stmt, err := buildSelect(q, s.postgres)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt.sql, stmt.args...)
	if err != nil {
		return nil, fmt.Errorf("query outlets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]domoutlet.Record, 0)
	for rows.Next() {
		var row recordRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Address, &row.Hours, &row.Amenities, &row.MapsURL); err != nil {
			return nil, fmt.Errorf("scan outlet: %w", err)
		}
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		if query.MatchesAll(rec, q) {
			out = append(out, query.Project(rec, q))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outlets: %w", err)
	}

	logExecuted(s.logger, s.backend(), q, len(out))
	return out, nil
}

// Seed upserts records in one transaction.
func (s *SQLStore) Seed(ctx context.Context, records []domoutlet.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `INSERT INTO outlets (outlet_id, name, address, hours, amenities, maps_url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (outlet_id) DO UPDATE SET
			name = excluded.name, address = excluded.address, hours = excluded.hours,
			amenities = excluded.amenities, maps_url = excluded.maps_url`
	if s.postgres {
		upsert = rebind(upsert)
	}

	for _, rec := range records {
		row, err := rowFromRecord(rec)
		if err != nil {
			return fmt.Errorf("seed outlet %s: %w", rec.ID, err)
		}
		if _, err := tx.ExecContext(ctx, upsert,
			row.ID, row.Name, row.Address, row.Hours, row.Amenities, row.MapsURL); err != nil {
			return fmt.Errorf("seed outlet %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	s.logger.Info("outlets seeded", zap.String("backend", s.backend()), zap.Int("count", len(records)))
	return nil
}

// Count returns the number of stored outlets.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM outlets").Scan(&n); err != nil {
		return 0, fmt.Errorf("count outlets: %w", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping outlets db: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close outlets db: %w", err)
	}
	return nil
}
