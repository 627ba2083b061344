package brewdesk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/chunk"
	domoutlet "github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
	outletrepo "github.com/kailas-cloud/brewdesk/internal/repository/outlet"
	answeruc "github.com/kailas-cloud/brewdesk/internal/usecase/answer"
	"github.com/kailas-cloud/brewdesk/internal/usecase/compose"
	healthuc "github.com/kailas-cloud/brewdesk/internal/usecase/health"
	"github.com/kailas-cloud/brewdesk/internal/usecase/retrieval"
	"github.com/kailas-cloud/brewdesk/internal/usecase/route"
	"github.com/kailas-cloud/brewdesk/internal/usecase/translate"
)

// answerUseCase is the internal interface for the pipeline.
type answerUseCase interface {
	Answer(ctx context.Context, req answeruc.Request) (answeruc.Response, error)
}

// Client is the brewdesk SDK entry point. Safe for concurrent use.
type Client struct {
	answers   answerUseCase
	healthSvc healthUseCase
	outlets   outletrepo.Store
	obs       *observer
}

// New builds the index, the outlet store and the pipeline.
// The provided context is used for opening and seeding the outlet store.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{location: time.UTC}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("brewdesk: embedder required (use WithEmbedder)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	emb := &embedderAdapter{inner: cfg.embedder}
	chunks := make([]chunk.Chunk, len(cfg.products))
	for i, p := range cfg.products {
		chunks[i] = chunk.New(p.ID, p.Text, p.Embedding, p.Metadata)
	}
	index, err := retrieval.New(chunks, emb, cfg.dimensions)
	if err != nil {
		return nil, fmt.Errorf("brewdesk: build product index: %w", err)
	}

	schema := query.DefaultSchema()
	translator, err := translate.New(schema, translate.WithLocation(cfg.location))
	if err != nil {
		return nil, fmt.Errorf("brewdesk: %w", err)
	}

	records, err := outletRecords(cfg.outlets)
	if err != nil {
		return nil, err
	}
	store, err := openOutlets(ctx, cfg, records, schema)
	if err != nil {
		return nil, err
	}

	var gen compose.Generator
	if cfg.generator != nil {
		gen = &generatorAdapter{inner: cfg.generator}
	}
	composeCfg := compose.DefaultConfig()
	if cfg.contextBudget > 0 {
		composeCfg.ContextBudget = cfg.contextBudget
	}
	if cfg.generationTimeout > 0 {
		composeCfg.Timeout = cfg.generationTimeout
	}

	answerCfg := answeruc.DefaultConfig()
	if cfg.branchTimeout > 0 {
		answerCfg.BranchTimeout = cfg.branchTimeout
	}
	if cfg.evidenceK > 0 {
		answerCfg.EvidenceK = cfg.evidenceK
	}
	answerCfg.MinScore = cfg.minScore

	answers := answeruc.New(
		route.New(), index, translator, store, schema,
		compose.New(gen, "sdk", composeCfg), answerCfg,
	)

	health := healthuc.New().Require("outlets", healthuc.PingCheck(store))
	if hc, ok := cfg.embedder.(domain.HealthChecker); ok {
		health = health.Optional("embedding", hc)
	}
	if hc, ok := cfg.generator.(domain.HealthChecker); ok {
		health = health.Optional("generation", hc)
	}

	return &Client{
		answers:   answers,
		healthSvc: health,
		outlets:   store,
		obs:       obs,
	}, nil
}

func outletRecords(outlets []Outlet) ([]domoutlet.Record, error) {
	records := make([]domoutlet.Record, 0, len(outlets))
	seen := make(map[string]bool, len(outlets))
	for _, o := range outlets {
		rec, err := outletrepo.NewRecord(o.ID, o.Name, o.Address, o.MapsURL, o.Services, o.OpeningHours)
		if err != nil {
			return nil, fmt.Errorf("brewdesk: %w: %w", domain.ErrInvalidArgument, err)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("brewdesk: %w: duplicate outlet id %q", domain.ErrInvalidArgument, rec.ID)
		}
		seen[rec.ID] = true
		records = append(records, rec)
	}
	return records, nil
}

func openOutlets(
	ctx context.Context, cfg *clientConfig, records []domoutlet.Record, schema query.Schema,
) (outletrepo.Store, error) {
	if cfg.sqliteDSN == "" {
		return outletrepo.NewMemoryStore(records, schema, zap.NewNop()), nil
	}
	s, err := outletrepo.OpenSQLite(ctx, cfg.sqliteDSN, schema, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("brewdesk: open outlet database: %w", err)
	}
	if len(records) > 0 {
		if err := s.Seed(ctx, records); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("brewdesk: seed outlets: %w", err)
		}
	}
	return s, nil
}

// Answer answers one question. Only invalid input and configuration faults are
// returned as errors; provider failures and timeouts yield a degraded answer.
func (c *Client) Answer(ctx context.Context, question string, opts ...AnswerOption) (ans Answer, err error) {
	start := time.Now()
	var status string
	defer func() { c.obs.observe("answer", start, status, err) }()

	req := answeruc.Request{Question: question}
	for _, o := range opts {
		o(&req)
	}

	resp, err := c.answers.Answer(ctx, req)
	if err != nil {
		return Answer{}, fmt.Errorf("answer: %w", err)
	}
	if resp.Degraded {
		status = statusDegraded
	}

	refs := resp.EvidenceRefs
	if refs == nil {
		refs = []string{}
	}
	ans = Answer{
		ID:           resp.ID,
		Text:         resp.Answer,
		Intent:       string(resp.UsedIntent),
		Confidence:   resp.Confidence,
		EvidenceRefs: refs,
		Degraded:     resp.Degraded,
		Generated:    resp.Generated,
	}
	c.obs.answered(ans)
	return ans, nil
}

// Close releases the outlet store.
func (c *Client) Close() error {
	if c.outlets == nil {
		return nil
	}
	if err := c.outlets.Close(); err != nil {
		return fmt.Errorf("close outlets: %w", err)
	}
	return nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// generatorAdapter wraps public Generator to satisfy the composer's generator.
// Errors always wrap ErrGenerationUnavailable so the composer falls back.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	text, err := a.inner.Generate(ctx, req.System, req.Prompt)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationUnavailable) {
			return domain.GenerationResult{}, err
		}
		return domain.GenerationResult{}, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	}
	return domain.GenerationResult{Text: text}, nil
}
