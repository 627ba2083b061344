// Package gemini implements answer generation on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/metrics"
)

// Config holds the Gemini settings.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Provider    string
	Logger      *zap.Logger
}

// models is the subset of *genai.Models the generator uses.
type models interface {
	GenerateContent(
		ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator answers prompts with a single GenerateContent call.
type Generator struct {
	models      models
	model       string
	temperature float32
	maxTokens   int
	provider    string
	logger      *zap.Logger
}

// NewGenerator creates a Gemini generator on the Gemini API backend.
func NewGenerator(ctx context.Context, cfg *Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGenerator(client.Models, cfg), nil
}

func newGenerator(m models, cfg *Config) *Generator {
	provider := cfg.Provider
	if provider == "" {
		provider = "gemini"
	}
	return &Generator{
		models:      m,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		provider:    provider,
		logger:      cfg.Logger,
	}
}

// Generate implements domain.Generator. Failures wrap domain.ErrGenerationUnavailable.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), g.contentConfig(req.System))
	if err != nil {
		return domain.GenerationResult{}, classify(err)
	}

	text, finish, err := extractText(resp)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	var prompt, completion int
	if u := resp.UsageMetadata; u != nil {
		prompt, completion = int(u.PromptTokenCount), int(u.CandidatesTokenCount)
	}
	metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "prompt").Add(float64(prompt))
	metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "completion").Add(float64(completion))

	g.logger.Debug("Generation completed",
		zap.String("provider", g.provider),
		zap.String("model", g.model),
		zap.String("finish_reason", string(finish)),
		zap.Int("prompt_tokens", prompt),
		zap.Int("completion_tokens", completion),
	)

	return domain.GenerationResult{Text: text, PromptTokens: prompt, CompletionTokens: completion}, nil
}

// HealthCheck reports whether a client is configured. The Gemini API has no
// free availability probe.
func (g *Generator) HealthCheck(context.Context) error {
	if g.models == nil {
		return fmt.Errorf("gemini client: %w", domain.ErrGenerationUnavailable)
	}
	return nil
}

func (g *Generator) contentConfig(system string) *genai.GenerateContentConfig {
	temperature := g.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.maxTokens) //nolint:gosec // bounded by config validation
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	return cfg
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, genai.FinishReason, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", "", fmt.Errorf("empty gemini response: %w", domain.ErrGenerationUnavailable)
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", cand.FinishReason, fmt.Errorf("completion blocked by safety filter: %w",
			domain.ErrGenerationUnavailable)
	}
	if cand.Content == nil {
		return "", cand.FinishReason, fmt.Errorf("gemini candidate without content: %w",
			domain.ErrGenerationUnavailable)
	}

	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil && p.Text != "" && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", cand.FinishReason, fmt.Errorf("gemini candidate without text: %w",
			domain.ErrGenerationUnavailable)
	}
	return text, cand.FinishReason, nil
}

// classify wraps a client error, marking rate limits, server errors and
// network failures as transient.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gemini request: %w: %w", domain.ErrGenerationUnavailable, err)
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return fmt.Errorf("gemini request failed: %w: %w: %w", err, domain.ErrGenerationUnavailable, domain.ErrTransient)
	}

	wrapped := fmt.Errorf("gemini API error %d: %w: %w", code, err, domain.ErrGenerationUnavailable)
	if code == http.StatusTooManyRequests || code >= 500 {
		return fmt.Errorf("%w: %w", wrapped, domain.ErrTransient)
	}
	return wrapped
}
