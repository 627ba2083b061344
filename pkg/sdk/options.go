package brewdesk

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/brewdesk/internal/domain/conversation"
	answeruc "github.com/kailas-cloud/brewdesk/internal/usecase/answer"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder   Embedder
	dimensions int
	generator  Generator

	products []Product
	outlets  []Outlet
	// sqliteDSN switches the outlet store from memory to SQLite.
	sqliteDSN string

	location          *time.Location
	contextBudget     int
	branchTimeout     time.Duration
	generationTimeout time.Duration
	evidenceK         int
	minScore          float64

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the query embedder and the corpus dimension it produces. Required.
func WithEmbedder(e Embedder, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.dimensions = dimensions
	})
}

// WithGenerator sets the answer generator. Without one, answers use the evidence fallback.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithProducts adds prebuilt product chunks to the index.
func WithProducts(products ...Product) Option {
	return optionFunc(func(c *clientConfig) {
		c.products = append(c.products, products...)
	})
}

// WithOutlets adds outlet records.
func WithOutlets(outlets ...Outlet) Option {
	return optionFunc(func(c *clientConfig) {
		c.outlets = append(c.outlets, outlets...)
	})
}

// WithSQLite keeps outlets in a SQLite database at dsn instead of memory.
// Outlets given with WithOutlets are upserted into it.
func WithSQLite(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sqliteDSN = dsn
	})
}

// WithTimezone sets the zone used for "today" and "now" in hours questions. Default: UTC.
func WithTimezone(loc *time.Location) Option {
	return optionFunc(func(c *clientConfig) {
		c.location = loc
	})
}

// WithContextBudget caps the generation prompt in characters. Default: 6000.
func WithContextBudget(chars int) Option {
	return optionFunc(func(c *clientConfig) {
		c.contextBudget = chars
	})
}

// WithBranchTimeout bounds each retrieval branch. Default: 5s.
func WithBranchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.branchTimeout = d
	})
}

// WithGenerationTimeout bounds each generation attempt. Default: 20s.
func WithGenerationTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.generationTimeout = d
	})
}

// WithEvidence sets how many product chunks are retrieved and the minimum similarity.
// Default: 4 chunks, no minimum.
func WithEvidence(k int, minScore float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.evidenceK = k
		c.minScore = minScore
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// AnswerOption configures a single question.
type AnswerOption func(*answeruc.Request)

// WithConversation passes the caller-held conversation summary and recent turns.
func WithConversation(summary string, turns ...Turn) AnswerOption {
	return func(r *answeruc.Request) {
		r.Summary = summary
		r.Turns = make([]conversation.Turn, len(turns))
		for i, t := range turns {
			r.Turns[i] = conversation.Turn{Role: conversation.Role(t.Role), Text: t.Text}
		}
	}
}
