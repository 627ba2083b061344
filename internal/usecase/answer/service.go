// Package answer runs the routing and dual-retrieval pipeline for one question.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/conversation"
	"github.com/kailas-cloud/brewdesk/internal/domain/evidence"
	"github.com/kailas-cloud/brewdesk/internal/domain/intent"
	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
	"github.com/kailas-cloud/brewdesk/internal/logger"
	"github.com/kailas-cloud/brewdesk/internal/metrics"
	"github.com/kailas-cloud/brewdesk/internal/usecase/compose"
	"github.com/kailas-cloud/brewdesk/internal/usecase/retrieval"
)

// MaxQuestionLen caps the accepted question length in characters.
const MaxQuestionLen = 2000

// Config tunes retrieval branches.
type Config struct {
	// BranchTimeout bounds each retrieval branch; zero disables the bound.
	BranchTimeout time.Duration
	// EvidenceK is the number of product chunks requested.
	EvidenceK int
	// MinScore drops product chunks below this similarity.
	MinScore float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{BranchTimeout: 5 * time.Second, EvidenceK: 4}
}

// Request is one question with optional conversation context.
type Request struct {
	Question string
	Summary  string
	Turns    []conversation.Turn
}

// Response is the answer with traceability data.
type Response struct {
	ID           string
	Answer       string
	UsedIntent   intent.Intent
	Confidence   float64
	EvidenceRefs []string
	// Degraded is set when a branch failed or the answer is a fallback.
	Degraded bool
	// Generated is set when the answer came from the generator.
	Generated bool
}

// Service coordinates routing, retrieval and composition.
type Service struct {
	router     Router
	index      ProductIndex
	translator Translator
	store      OutletStore
	schema     query.Schema
	composer   Composer
	cfg        Config
}

// New creates a Service.
func New(
	router Router,
	index ProductIndex,
	translator Translator,
	store OutletStore,
	schema query.Schema,
	composer Composer,
	cfg Config,
) *Service {
	if cfg.EvidenceK <= 0 {
		cfg.EvidenceK = DefaultConfig().EvidenceK
	}
	return &Service{
		router:     router,
		index:      index,
		translator: translator,
		store:      store,
		schema:     schema,
		composer:   composer,
		cfg:        cfg,
	}
}

// outcome of one retrieval branch
type outcome string

const (
	outcomeOK          outcome = "ok"
	outcomeEmpty       outcome = "empty"
	outcomeUnsupported outcome = "unsupported"
	outcomeTimeout     outcome = "timeout"
	outcomeError       outcome = "error"
)

// ran reports whether the branch completed its lookup.
func (o outcome) ran() bool { return o == outcomeOK || o == outcomeEmpty }

// degraded reports whether the branch failed at runtime.
func (o outcome) degraded() bool { return o == outcomeTimeout || o == outcomeError }

type productResult struct {
	items   []evidence.Evidence
	price   *retrieval.PriceRange
	outcome outcome
	err     error
}

type outletResult struct {
	records []outlet.Record
	outcome outcome
	err     error
}

// Answer answers one question. Only invalid input and configuration faults
// (schema violation, dimension mismatch) are returned as errors; every other
// failure degrades into a well-formed answer.
func (s *Service) Answer(ctx context.Context, req Request) (Response, error) {
	question := strings.Join(strings.Fields(req.Question), " ")
	if question == "" {
		return Response{}, fmt.Errorf("%w: question is empty", domain.ErrInvalidArgument)
	}
	if n := utf8.RuneCountInString(question); n > MaxQuestionLen {
		return Response{}, fmt.Errorf("%w: question is %d characters, max %d",
			domain.ErrInvalidArgument, n, MaxQuestionLen)
	}

	resp := Response{ID: uuid.NewString()}
	ctx = logger.With(ctx, zap.String("answer_id", resp.ID))
	log := logger.FromContext(ctx)
	convo := conversation.New(req.Summary, req.Turns)

	decision := s.router.Route(ctx, question, convo)
	metrics.RoutedIntentsTotal.WithLabelValues(string(decision.Intent)).Inc()
	resp.Confidence = decision.Confidence

	if decision.Intent == intent.Unsupported {
		resp.Answer = compose.CannotHelp
		resp.UsedIntent = intent.Unsupported
		log.Info("Question out of domain")
		return resp, nil
	}

	prod, outl := s.retrieve(ctx, question, decision.Intent)

	// An outlet question the translator cannot express is retried as a product search.
	if decision.Intent == intent.Outlet && outl.outcome == outcomeUnsupported {
		log.Debug("Outlet query unsupported, falling back to product search")
		prod = s.searchProducts(ctx, question)
	}

	if err := firstHard(prod.err, outl.err); err != nil {
		log.Error("Answer pipeline misconfigured", zap.Error(err))
		return Response{}, err
	}

	resp.UsedIntent = usedIntent(decision.Intent, prod.outcome, outl.outcome)
	resp.EvidenceRefs = append(evidence.IDs(prod.items), outlet.IDs(outl.records)...)

	in := compose.Input{
		Question:     question,
		Conversation: convo,
		Evidence:     prod.items,
		Records:      outl.records,
	}
	if prod.price != nil && resp.UsedIntent == intent.Product {
		in.EmptyMessage = compose.NoProducts
	}
	res := s.composer.Compose(ctx, in)

	resp.Answer = res.Text
	resp.Generated = res.Generated
	resp.Degraded = res.Degraded || prod.outcome.degraded() || outl.outcome.degraded()

	log.Info("Answer composed",
		zap.String("routed_intent", string(decision.Intent)),
		zap.String("used_intent", string(resp.UsedIntent)),
		zap.String("product_branch", string(prod.outcome)),
		zap.String("outlet_branch", string(outl.outcome)),
		zap.Int("evidence", len(prod.items)),
		zap.Int("records", len(outl.records)),
		zap.Int("truncated_evidence", res.TruncatedEvidence),
		zap.Int("truncated_records", res.TruncatedRecords),
		zap.Bool("generated", res.Generated),
		zap.Bool("degraded", resp.Degraded),
	)
	return resp, nil
}

// retrieve runs the branches the intent asks for, concurrently for both.
func (s *Service) retrieve(ctx context.Context, question string, in intent.Intent) (productResult, outletResult) {
	var (
		prod productResult
		outl outletResult
		wg   sync.WaitGroup
	)
	if in.WantsProducts() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prod = s.searchProducts(ctx, question)
		}()
	}
	if in.WantsOutlets() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outl = s.searchOutlets(ctx, question)
		}()
	}
	wg.Wait()
	return prod, outl
}

func (s *Service) searchProducts(ctx context.Context, question string) (res productResult) {
	defer func() { s.recordBranch(ctx, "product", res.outcome, res.err) }()

	res.price = retrieval.ParsePriceRange(question)
	if s.index == nil {
		res.outcome = outcomeError
		return res
	}

	ctx, cancel := s.branchContext(ctx)
	defer cancel()

	items, err := s.index.SearchWithOptions(ctx, question, retrieval.Options{
		K:        s.cfg.EvidenceK,
		MinScore: s.cfg.MinScore,
		Price:    res.price,
	})
	if err != nil {
		res.outcome, res.err = classify(ctx, err)
		return res
	}
	res.items = items
	res.outcome = outcomeOK
	if len(items) == 0 {
		res.outcome = outcomeEmpty
	}
	return res
}

func (s *Service) searchOutlets(ctx context.Context, question string) (res outletResult) {
	defer func() { s.recordBranch(ctx, "outlet", res.outcome, res.err) }()

	if s.translator == nil || s.store == nil {
		res.outcome = outcomeError
		return res
	}

	q, err := s.translator.Translate(question, s.schema)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedQuery) {
			res.outcome = outcomeUnsupported
			return res
		}
		res.outcome, res.err = classify(ctx, err)
		return res
	}

	ctx, cancel := s.branchContext(ctx)
	defer cancel()

	records, err := s.store.Execute(ctx, q)
	if err != nil {
		res.outcome, res.err = classify(ctx, err)
		return res
	}
	res.records = records
	res.outcome = outcomeOK
	if len(records) == 0 {
		res.outcome = outcomeEmpty
	}
	return res
}

func (s *Service) branchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.BranchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.BranchTimeout)
}

func (s *Service) recordBranch(ctx context.Context, branch string, o outcome, err error) {
	metrics.BranchOutcomesTotal.WithLabelValues(branch, string(o)).Inc()
	if o.degraded() {
		logger.FromContext(ctx).Warn("Retrieval branch degraded",
			zap.String("branch", branch),
			zap.String("outcome", string(o)),
		)
	}
	if err != nil {
		logger.FromContext(ctx).Error("Retrieval branch failed hard",
			zap.String("branch", branch),
			zap.Error(err),
		)
	}
}

// classify maps a branch error to an outcome. Only hard failures are kept as
// errors; the rest degrade the answer.
func classify(ctx context.Context, err error) (outcome, error) {
	switch {
	case domain.IsHardFailure(err), errors.Is(err, domain.ErrSchemaVersionMismatch):
		return outcomeError, err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return outcomeTimeout, nil
	default:
		return outcomeError, nil
	}
}

func firstHard(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// usedIntent reports the path whose lookups actually completed.
func usedIntent(routed intent.Intent, prod, outl outcome) intent.Intent {
	switch {
	case prod.ran() && outl.ran():
		return intent.Both
	case prod.ran():
		return intent.Product
	case outl.ran():
		return intent.Outlet
	}
	return routed
}
