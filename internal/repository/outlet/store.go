package outlet

import (
	"context"
	"sort"

	"go.uber.org/zap"

	domoutlet "github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
)

// Store executes validated outlet queries. Implementations are read-only after
// startup and safe for concurrent use.
type Store interface {
	Execute(ctx context.Context, q query.Query) ([]domoutlet.Record, error)
	Ping(ctx context.Context) error
	Close() error
}

// logExecuted records the field/operator pairs of every executed query.
// Values are left out: they are derived from user text.
func logExecuted(logger *zap.Logger, backend string, q query.Query, rows int) {
	logger.Debug("outlet query executed",
		zap.String("backend", backend),
		zap.Strings("filters", q.Pairs()),
		zap.Int("rows", rows),
	)
}

// sortByID orders records the way SQL "ORDER BY LENGTH(outlet_id), outlet_id" does,
// which is numeric order for numeric ids.
func sortByID(records []domoutlet.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].ID, records[j].ID
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
}
