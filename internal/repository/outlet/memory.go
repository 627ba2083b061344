package outlet

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domoutlet "github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
)

// MemoryStore serves outlet queries from records loaded at startup.
type MemoryStore struct {
	records []domoutlet.Record
	schema  query.Schema
	logger  *zap.Logger
}

// NewMemoryStore copies and orders the records.
func NewMemoryStore(records []domoutlet.Record, schema query.Schema, logger *zap.Logger) *MemoryStore {
	kept := make([]domoutlet.Record, len(records))
	copy(kept, records)
	sortByID(kept)
	return &MemoryStore{records: kept, schema: schema, logger: logger}
}

// Execute validates q against the allow-list, then returns every matching record.
func (s *MemoryStore) Execute(ctx context.Context, q query.Query) ([]domoutlet.Record, error) {
	if err := s.schema.Validate(q); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	out := make([]domoutlet.Record, 0)
	for _, r := range s.records {
		if query.MatchesAll(r, q) {
			out = append(out, query.Project(r, q))
		}
	}
	logExecuted(s.logger, "memory", q, len(out))
	return out, nil
}

// Len returns the number of loaded records.
func (s *MemoryStore) Len() int { return len(s.records) }

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
