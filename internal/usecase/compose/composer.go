// Package compose merges retrieved evidence into a single generated answer.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/conversation"
	"github.com/kailas-cloud/brewdesk/internal/domain/evidence"
	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/logger"
	"github.com/kailas-cloud/brewdesk/internal/metrics"
)

const maxFallbackRecords = 10

// Config tunes prompt size and the generation call.
type Config struct {
	// ContextBudget caps the prompt in characters; zero disables truncation.
	ContextBudget int
	// Timeout bounds each generation attempt.
	Timeout time.Duration
	// RetryOnce allows a second attempt after a transient failure.
	RetryOnce bool
	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string
	// MaxRecentTurns caps the turns copied into the prompt.
	MaxRecentTurns int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ContextBudget:  6000,
		Timeout:        20 * time.Second,
		RetryOnce:      true,
		SystemPrompt:   DefaultSystemPrompt,
		MaxRecentTurns: 6,
	}
}

// Input is everything the composer sees for one request.
type Input struct {
	Question     string
	Conversation conversation.Context
	Evidence     []evidence.Evidence
	Records      []outlet.Record
	// EmptyMessage replaces NoResults when no evidence was retrieved.
	EmptyMessage string
}

// Result is the composed answer.
type Result struct {
	Text string
	// Generated is true when the text came from the generator.
	Generated bool
	// Degraded is true when the deterministic fallback was used.
	Degraded bool
	// Attempts counts generation calls made (0, 1 or 2).
	Attempts int

	RetainedEvidence  int
	RetainedRecords   int
	TruncatedEvidence int
	TruncatedRecords  int
}

// Composer builds prompts and calls the generator.
type Composer struct {
	gen      Generator
	provider string
	cfg      Config
}

// New creates a Composer. provider labels generation metrics.
func New(gen Generator, provider string, cfg Config) *Composer {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return &Composer{gen: gen, provider: provider, cfg: cfg}
}

// Prompt returns the budgeted prompt for the input and the plan behind it.
func (c *Composer) Prompt(in Input) (string, Result) {
	p := c.plan(in)
	return p.render(), Result{
		RetainedEvidence:  len(p.products),
		RetainedRecords:   len(p.outlets),
		TruncatedEvidence: p.droppedProducts,
		TruncatedRecords:  p.droppedOutlets,
	}
}

// Compose returns an answer grounded on the input evidence. It never fails:
// a generation failure yields a deterministic answer built from the evidence.
func (c *Composer) Compose(ctx context.Context, in Input) Result {
	log := logger.FromContext(ctx)

	if len(in.Evidence) == 0 && len(in.Records) == 0 {
		msg := in.EmptyMessage
		if msg == "" {
			msg = NoResults
		}
		return Result{Text: msg}
	}

	p := c.plan(in)
	if p.droppedProducts > 0 {
		metrics.TruncatedEvidenceTotal.WithLabelValues("product").Add(float64(p.droppedProducts))
	}
	if p.droppedOutlets > 0 {
		metrics.TruncatedEvidenceTotal.WithLabelValues("outlet").Add(float64(p.droppedOutlets))
	}

	res := Result{
		RetainedEvidence:  len(p.products),
		RetainedRecords:   len(p.outlets),
		TruncatedEvidence: p.droppedProducts,
		TruncatedRecords:  p.droppedOutlets,
	}

	req := domain.GenerationRequest{System: c.cfg.SystemPrompt, Prompt: p.render()}
	text, attempts, err := c.generate(ctx, req)
	res.Attempts = attempts
	if err != nil {
		log.Warn("Generation unavailable, using evidence fallback",
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		metrics.GenerationOutcomesTotal.WithLabelValues("fallback").Inc()
		res.Text = Fallback(sortedEvidence(in.Evidence), in.Records)
		res.Degraded = true
		return res
	}

	if attempts > 1 {
		metrics.GenerationOutcomesTotal.WithLabelValues("retry").Inc()
	} else {
		metrics.GenerationOutcomesTotal.WithLabelValues("ok").Inc()
	}
	res.Text = text
	res.Generated = true
	return res
}

func (c *Composer) plan(in Input) *plan {
	p := &plan{
		summary:  in.Conversation.Summary(),
		turns:    in.Conversation.Recent(c.cfg.MaxRecentTurns),
		products: sortedEvidence(in.Evidence),
		outlets:  append([]outlet.Record(nil), in.Records...),
		question: strings.TrimSpace(in.Question),
	}
	turns := len(p.turns)
	p.fit(c.cfg.ContextBudget)
	p.droppedTurns = turns - len(p.turns)
	return p
}

// generate makes one bounded call, plus one retry on a transient failure.
func (c *Composer) generate(ctx context.Context, req domain.GenerationRequest) (string, int, error) {
	if c.gen == nil {
		return "", 0, domain.ErrGenerationUnavailable
	}

	text, err := c.attempt(ctx, req)
	if err == nil {
		return text, 1, nil
	}
	if !c.cfg.RetryOnce || !domain.IsTransient(err) || ctx.Err() != nil {
		return "", 1, err
	}

	logger.FromContext(ctx).Debug("Retrying transient generation failure", zap.Error(err))
	text, err = c.attempt(ctx, req)
	if err != nil {
		return "", 2, err
	}
	return text, 2, nil
}

func (c *Composer) attempt(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.gen.Generate(ctx, req)
	metrics.GenerationDuration.WithLabelValues(c.provider).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrTransient) {
			err = fmt.Errorf("%w: %w", domain.ErrTransient, err)
		}
		if !errors.Is(err, domain.ErrGenerationUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
		}
		return "", err
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGenerationUnavailable)
	}
	return text, nil
}

// Fallback renders an answer from evidence alone. Outlet rows come first; with
// product evidence only, the top chunk text is returned verbatim.
func Fallback(items []evidence.Evidence, records []outlet.Record) string {
	if len(records) == 0 && len(items) == 0 {
		return NoResults
	}
	if len(records) == 0 {
		return items[0].Text()
	}

	var b strings.Builder
	if len(records) == 1 {
		b.WriteString("Here is the outlet I found:\n")
	} else {
		b.WriteString(fmt.Sprintf("Here are the %d outlets I found:\n", len(records)))
	}
	for i, r := range records {
		if i == maxFallbackRecords {
			b.WriteString(fmt.Sprintf("…and %d more.\n", len(records)-maxFallbackRecords))
			break
		}
		b.WriteString("- ")
		b.WriteString(r.Render())
		b.WriteString("\n")
	}
	if len(items) > 0 {
		b.WriteString("\n")
		b.WriteString(items[0].Text())
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedEvidence(items []evidence.Evidence) []evidence.Evidence {
	out := append([]evidence.Evidence(nil), items...)
	evidence.Sort(out)
	return out
}
